package mongo

import (
	"time"

	"github.com/xraph/grove"

	"github.com/xraph/paywall/content"
	"github.com/xraph/paywall/id"
	"github.com/xraph/paywall/platform"
	"github.com/xraph/paywall/session"
	"github.com/xraph/paywall/types"
	"github.com/xraph/paywall/vault"
)

// ==================== Content binding models ====================

type bindingModel struct {
	grove.BaseModel `grove:"table:paywall_bindings"`

	ID        string            `grove:"id,pk"      bson:"_id"`
	Creator   string            `grove:"creator"    bson:"creator"`
	Rate      int64             `grove:"rate"       bson:"rate"`
	VaultID   string            `grove:"vault_id"   bson:"vault_id"`
	Metadata  map[string]string `grove:"metadata"   bson:"metadata,omitempty"`
	CreatedAt time.Time         `grove:"created_at" bson:"created_at"`
	UpdatedAt time.Time         `grove:"updated_at" bson:"updated_at"`
}

func toBindingModel(b *content.Binding) *bindingModel {
	return &bindingModel{
		ID:        b.ID.String(),
		Creator:   b.Creator,
		Rate:      int64(b.Rate),
		VaultID:   b.VaultID.String(),
		Metadata:  b.Metadata,
		CreatedAt: b.CreatedAt,
		UpdatedAt: b.UpdatedAt,
	}
}

func fromBindingModel(m *bindingModel) (*content.Binding, error) {
	contentID, err := id.ParseContentID(m.ID)
	if err != nil {
		return nil, err
	}
	vaultID, err := id.ParseVaultID(m.VaultID)
	if err != nil {
		return nil, err
	}

	return &content.Binding{
		Entity: types.Entity{
			CreatedAt: m.CreatedAt,
			UpdatedAt: m.UpdatedAt,
		},
		ID:       contentID,
		Creator:  m.Creator,
		Rate:     uint64(m.Rate),
		VaultID:  vaultID,
		Metadata: m.Metadata,
	}, nil
}

// ==================== Vault models ====================

type vaultModel struct {
	grove.BaseModel `grove:"table:paywall_vaults"`

	ID        string    `grove:"id,pk"      bson:"_id"`
	Creator   string    `grove:"creator"    bson:"creator"`
	Balance   int64     `grove:"balance"    bson:"balance"`
	CreatedAt time.Time `grove:"created_at" bson:"created_at"`
	UpdatedAt time.Time `grove:"updated_at" bson:"updated_at"`
}

func toVaultModel(v *vault.Vault) *vaultModel {
	return &vaultModel{
		ID:        v.ID.String(),
		Creator:   v.Creator,
		Balance:   int64(v.Balance.Amount()),
		CreatedAt: v.CreatedAt,
		UpdatedAt: v.UpdatedAt,
	}
}

func fromVaultModel(m *vaultModel) (*vault.Vault, error) {
	vaultID, err := id.ParseVaultID(m.ID)
	if err != nil {
		return nil, err
	}

	return &vault.Vault{
		Entity: types.Entity{
			CreatedAt: m.CreatedAt,
			UpdatedAt: m.UpdatedAt,
		},
		ID:      vaultID,
		Creator: m.Creator,
		Balance: types.NewValue(uint64(m.Balance)),
	}, nil
}

// ==================== Session models ====================

type sessionModel struct {
	grove.BaseModel `grove:"table:paywall_sessions"`

	ID               string    `grove:"id,pk"              bson:"_id"`
	ContentID        string    `grove:"content_id"         bson:"content_id"`
	VaultID          string    `grove:"vault_id"           bson:"vault_id"`
	Owner            string    `grove:"owner"              bson:"owner"`
	Rate             int64     `grove:"rate"               bson:"rate"`
	Deposit          int64     `grove:"deposit"            bson:"deposit"`
	StartMS          int64     `grove:"start_ms"           bson:"start_ms"`
	LastCheckpointMS int64     `grove:"last_checkpoint_ms" bson:"last_checkpoint_ms"`
	Status           string    `grove:"status"             bson:"status"`
	TotalSpent       int64     `grove:"total_spent"        bson:"total_spent"`
	TotalStreamedMS  int64     `grove:"total_streamed_ms"  bson:"total_streamed_ms"`
	CreatedAt        time.Time `grove:"created_at"         bson:"created_at"`
	UpdatedAt        time.Time `grove:"updated_at"         bson:"updated_at"`
}

func toSessionModel(s *session.Session) *sessionModel {
	return &sessionModel{
		ID:               s.ID.String(),
		ContentID:        s.ContentID.String(),
		VaultID:          s.VaultID.String(),
		Owner:            s.Owner,
		Rate:             int64(s.Rate),
		Deposit:          int64(s.Deposit.Amount()),
		StartMS:          int64(s.StartMS),
		LastCheckpointMS: int64(s.LastCheckpointMS),
		Status:           string(s.Status),
		TotalSpent:       int64(s.TotalSpent),
		TotalStreamedMS:  int64(s.TotalStreamedMS),
		CreatedAt:        s.CreatedAt,
		UpdatedAt:        s.UpdatedAt,
	}
}

func fromSessionModel(m *sessionModel) (*session.Session, error) {
	sessionID, err := id.ParseSessionID(m.ID)
	if err != nil {
		return nil, err
	}
	contentID, err := id.ParseContentID(m.ContentID)
	if err != nil {
		return nil, err
	}
	vaultID, err := id.ParseVaultID(m.VaultID)
	if err != nil {
		return nil, err
	}

	return &session.Session{
		Entity: types.Entity{
			CreatedAt: m.CreatedAt,
			UpdatedAt: m.UpdatedAt,
		},
		ID:               sessionID,
		ContentID:        contentID,
		VaultID:          vaultID,
		Owner:            m.Owner,
		Rate:             uint64(m.Rate),
		Deposit:          types.NewValue(uint64(m.Deposit)),
		StartMS:          uint64(m.StartMS),
		LastCheckpointMS: uint64(m.LastCheckpointMS),
		Status:           session.Status(m.Status),
		TotalSpent:       uint64(m.TotalSpent),
		TotalStreamedMS:  uint64(m.TotalStreamedMS),
	}, nil
}

// ==================== Platform accumulator models ====================

// platformRowID is the document key of the single accumulator record.
const platformRowID = "platform"

type platformModel struct {
	grove.BaseModel `grove:"table:paywall_platform"`

	ID         string    `grove:"id,pk"       bson:"_id"`
	Admin      string    `grove:"admin"       bson:"admin"`
	ListingFee int64     `grove:"listing_fee" bson:"listing_fee"`
	Balance    int64     `grove:"balance"     bson:"balance"`
	CreatedAt  time.Time `grove:"created_at"  bson:"created_at"`
	UpdatedAt  time.Time `grove:"updated_at"  bson:"updated_at"`
}

func toPlatformModel(p *platform.Accumulator) *platformModel {
	return &platformModel{
		ID:         platformRowID,
		Admin:      p.Admin,
		ListingFee: int64(p.ListingFee),
		Balance:    int64(p.Balance.Amount()),
		CreatedAt:  p.CreatedAt,
		UpdatedAt:  p.UpdatedAt,
	}
}

func fromPlatformModel(m *platformModel) *platform.Accumulator {
	return &platform.Accumulator{
		Entity: types.Entity{
			CreatedAt: m.CreatedAt,
			UpdatedAt: m.UpdatedAt,
		},
		Admin:      m.Admin,
		ListingFee: uint64(m.ListingFee),
		Balance:    types.NewValue(uint64(m.Balance)),
	}
}
