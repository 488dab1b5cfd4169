package state

import (
	"crypto/sha256"
	"encoding/json"
	"os"
	"path/filepath"
	"sort"

	"github.com/pkg/errors"
)

type State struct {
	Height int64 `json:"height"`

	NextGameNonce uint64            `json:"nextGameNonce"`
	AccountKeys   map[string][]byte `json:"accountKeys,omitempty"` // identity -> ed25519 pubkey (32 bytes)
	NonceMax      map[string]uint64 `json:"nonceMax,omitempty"`    // signer -> last accepted tx.nonce, for replay protection
	Games         map[string]*Game  `json:"games"`

	Vault *VaultStore `json:"vault,omitempty"`
}

func NewState() *State {
	return &State{
		Height:        0,
		NextGameNonce: 1,
		AccountKeys:   map[string][]byte{},
		NonceMax:      map[string]uint64{},
		Games:         map[string]*Game{},
		Vault:         NewVaultStore(),
	}
}

func Load(home string) (*State, error) {
	path := filepath.Join(home, "state.json")
	b, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return NewState(), nil
		}
		return nil, errors.Wrap(err, "read state")
	}
	var st State
	if err := json.Unmarshal(b, &st); err != nil {
		return nil, errors.Wrap(err, "decode state")
	}
	st.normalize()
	return &st, nil
}

func (s *State) Save(home string) error {
	if err := os.MkdirAll(home, 0o755); err != nil {
		return errors.Wrap(err, "mkdir home")
	}
	path := filepath.Join(home, "state.json")
	b, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return errors.Wrap(err, "encode state")
	}
	if err := os.WriteFile(path, b, 0o644); err != nil {
		return errors.Wrap(err, "write state")
	}
	return nil
}

// Clone returns a deep copy of state suitable for staged tx execution.
func (s *State) Clone() (*State, error) {
	if s == nil {
		return nil, errors.New("state is nil")
	}
	b, err := json.Marshal(s)
	if err != nil {
		return nil, errors.Wrap(err, "encode state clone")
	}
	var out State
	if err := json.Unmarshal(b, &out); err != nil {
		return nil, errors.Wrap(err, "decode state clone")
	}
	out.normalize()
	return &out, nil
}

func (s *State) normalize() {
	if s.AccountKeys == nil {
		s.AccountKeys = map[string][]byte{}
	}
	if s.NonceMax == nil {
		s.NonceMax = map[string]uint64{}
	}
	if s.Games == nil {
		s.Games = map[string]*Game{}
	}
	if s.NextGameNonce == 0 {
		s.NextGameNonce = 1
	}
	if s.Vault == nil {
		s.Vault = NewVaultStore()
	}
	s.Vault.normalize()
}

func (s *State) AppHash() []byte {
	// Deterministic JSON hash: marshal with stable key ordering by serializing
	// a normalized view.
	//
	// Note: encoding/json does NOT guarantee map key order, so we manually
	// normalize maps into slices.
	type accountKeyKV struct {
		Identity string `json:"identity"`
		PubKey   []byte `json:"pubKey"`
	}
	type nonceKV struct {
		Signer string `json:"signer"`
		Nonce  uint64 `json:"nonce"`
	}
	type gameKV struct {
		ID   string `json:"id"`
		Game *Game  `json:"game"`
	}
	type recordKV struct {
		Handle string       `json:"handle"`
		Record *VaultRecord `json:"record"`
	}

	accountKeys := make([]accountKeyKV, 0, len(s.AccountKeys))
	for k, v := range s.AccountKeys {
		accountKeys = append(accountKeys, accountKeyKV{Identity: k, PubKey: v})
	}
	sort.Slice(accountKeys, func(i, j int) bool { return accountKeys[i].Identity < accountKeys[j].Identity })

	nonces := make([]nonceKV, 0, len(s.NonceMax))
	for k, v := range s.NonceMax {
		nonces = append(nonces, nonceKV{Signer: k, Nonce: v})
	}
	sort.Slice(nonces, func(i, j int) bool { return nonces[i].Signer < nonces[j].Signer })

	games := make([]gameKV, 0, len(s.Games))
	for id, g := range s.Games {
		games = append(games, gameKV{ID: id, Game: g})
	}
	sort.Slice(games, func(i, j int) bool { return games[i].ID < games[j].ID })

	var records []recordKV
	var vaultKey []byte
	var vaultNext uint64
	if s.Vault != nil {
		vaultKey = s.Vault.Key
		vaultNext = s.Vault.NextID
		records = make([]recordKV, 0, len(s.Vault.Records))
		for h, r := range s.Vault.Records {
			records = append(records, recordKV{Handle: h, Record: r})
		}
		sort.Slice(records, func(i, j int) bool { return records[i].Handle < records[j].Handle })
	}

	normalized := struct {
		Height        int64          `json:"height"`
		NextGameNonce uint64         `json:"nextGameNonce"`
		AccountKeys   []accountKeyKV `json:"accountKeys,omitempty"`
		NonceMax      []nonceKV      `json:"nonceMax,omitempty"`
		Games         []gameKV       `json:"games"`
		VaultKey      []byte         `json:"vaultKey,omitempty"`
		VaultNextID   uint64         `json:"vaultNextId,omitempty"`
		VaultRecords  []recordKV     `json:"vaultRecords,omitempty"`
	}{
		Height:        s.Height,
		NextGameNonce: s.NextGameNonce,
		AccountKeys:   accountKeys,
		NonceMax:      nonces,
		Games:         games,
		VaultKey:      vaultKey,
		VaultNextID:   vaultNext,
		VaultRecords:  records,
	}

	b, _ := json.Marshal(normalized)
	sum := sha256.Sum256(b)
	return sum[:]
}
