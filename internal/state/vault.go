package state

import "sort"

// PublicGrant in a record's grant list marks the plaintext as publicly
// disclosed (community cards after reveal).
const PublicGrant = "*"

// VaultRecord is one stored ciphertext plus its decryption grants.
// The plaintext is never stored.
type VaultRecord struct {
	C1 []byte `json:"c1"` // 32-byte ristretto point
	C2 []byte `json:"c2"` // 32-byte ristretto point

	// Grants are the identities authorized to decrypt, sorted ascending.
	Grants []string `json:"grants,omitempty"`
}

func (r *VaultRecord) HasGrant(identity string) bool {
	for _, g := range r.Grants {
		if g == PublicGrant || g == identity {
			return true
		}
	}
	return false
}

func (r *VaultRecord) AddGrant(identity string) {
	for _, g := range r.Grants {
		if g == identity {
			return
		}
	}
	r.Grants = append(r.Grants, identity)
	sort.Strings(r.Grants)
}

func (r *VaultRecord) RemoveGrant(identity string) {
	out := r.Grants[:0]
	for _, g := range r.Grants {
		if g != identity {
			out = append(out, g)
		}
	}
	r.Grants = out
}

// VaultStore is the persisted half of the confidential value service:
// ciphertexts, grants, and the allocation counter for opaque handles.
//
// Devnet: the vault secret key lives in app state so every node evaluates the
// same confidential operations deterministically. A production deployment
// moves the key behind a threshold KMS and keeps only ciphertexts on-chain.
type VaultStore struct {
	Key     []byte                  `json:"key,omitempty"` // 32-byte ristretto scalar
	NextID  uint64                  `json:"nextId"`
	Records map[string]*VaultRecord `json:"records"`
}

func NewVaultStore() *VaultStore {
	return &VaultStore{
		NextID:  1,
		Records: map[string]*VaultRecord{},
	}
}

func (v *VaultStore) normalize() {
	if v.Records == nil {
		v.Records = map[string]*VaultRecord{}
	}
	if v.NextID == 0 {
		v.NextID = 1
	}
}
