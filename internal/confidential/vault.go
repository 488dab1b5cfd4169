package confidential

import (
	"fmt"

	"github.com/pkg/errors"

	"github.com/MichaelBrownui/PrivacyPoker/internal/pokercrypto"
	"github.com/MichaelBrownui/PrivacyPoker/internal/state"
)

const (
	vaultKeyDomain   = "privacypoker/v1/vault/key"
	vaultNonceDomain = "privacypoker/v1/vault/r"

	// defaultKeySeed keys the vault when no chain seed was supplied at
	// genesis. Devnet only: every node derives the same key from it.
	defaultKeySeed = "privacypoker-devnet"
)

// Vault implements Service on top of the persisted VaultStore using
// exponential ElGamal over ristretto255. Handles index stored ciphertexts;
// add/subtract are genuine homomorphic group operations; decryption walks the
// bounded discrete log and is gated by per-identity grants.
type Vault struct {
	store *state.VaultStore
}

func NewVault(store *state.VaultStore) *Vault {
	return &Vault{store: store}
}

// InitKey derives the vault key from seed if no key is set yet. Called at
// genesis with the chain id; later calls are no-ops.
func (v *Vault) InitKey(seed []byte) error {
	if len(v.store.Key) != 0 {
		return nil
	}
	sk, err := pokercrypto.HashToScalar(vaultKeyDomain, seed)
	if err != nil {
		return errors.Wrap(ErrUnavailable, err.Error())
	}
	v.store.Key = sk.Bytes()
	return nil
}

func (v *Vault) secretKey() (pokercrypto.Scalar, error) {
	if len(v.store.Key) == 0 {
		if err := v.InitKey([]byte(defaultKeySeed)); err != nil {
			return pokercrypto.Scalar{}, err
		}
	}
	sk, err := pokercrypto.ScalarFromBytesCanonical(v.store.Key)
	if err != nil {
		return pokercrypto.Scalar{}, errors.Wrap(ErrUnavailable, err.Error())
	}
	return sk, nil
}

func (v *Vault) PublicKey() []byte {
	sk, err := v.secretKey()
	if err != nil {
		return nil
	}
	return pokercrypto.MulBase(sk).Bytes()
}

func (v *Vault) nextHandle() (Handle, uint64) {
	n := v.store.NextID
	v.store.NextID++
	return Handle(fmt.Sprintf("ct-%d", n)), n
}

func (v *Vault) record(h Handle) (*state.VaultRecord, error) {
	rec, ok := v.store.Records[string(h)]
	if !ok {
		return nil, errors.Wrapf(ErrUnknownHandle, "%s", h)
	}
	return rec, nil
}

func (v *Vault) ciphertext(h Handle) (pokercrypto.ElGamalCiphertext, *state.VaultRecord, error) {
	rec, err := v.record(h)
	if err != nil {
		return pokercrypto.ElGamalCiphertext{}, nil, err
	}
	ct, err := pokercrypto.DecodeCiphertext(append(append([]byte{}, rec.C1...), rec.C2...))
	if err != nil {
		return pokercrypto.ElGamalCiphertext{}, nil, errors.Wrap(ErrUnavailable, err.Error())
	}
	return ct, rec, nil
}

func (v *Vault) put(ct pokercrypto.ElGamalCiphertext, grants []string) Handle {
	h, _ := v.nextHandle()
	v.store.Records[string(h)] = &state.VaultRecord{
		C1:     ct.C1.Bytes(),
		C2:     ct.C2.Bytes(),
		Grants: grants,
	}
	return h
}

func (v *Vault) Encrypt(value uint64, owner string) (Handle, error) {
	// Larger plaintexts could never be decrypted again (bounded discrete
	// log), so refuse them at the door.
	if value > MaxAmount {
		return "", errors.Wrapf(ErrOutOfRange, "%d", value)
	}
	sk, err := v.secretKey()
	if err != nil {
		return "", err
	}
	pk := pokercrypto.MulBase(sk)

	// Deterministic nonce: every node must produce the identical ciphertext
	// for the same allocation.
	r, err := pokercrypto.HashToScalar(vaultNonceDomain, v.store.Key, pokercrypto.U64LE(v.store.NextID))
	if err != nil {
		return "", errors.Wrap(ErrUnavailable, err.Error())
	}
	ct, err := pokercrypto.ElGamalEncrypt(pk, pokercrypto.ScalarFromUint64(value), r)
	if err != nil {
		return "", errors.Wrap(ErrUnavailable, err.Error())
	}
	var grants []string
	if owner != "" {
		grants = []string{owner}
	}
	return v.put(ct, grants), nil
}

func (v *Vault) Import(cipher []byte, owner string) (Handle, error) {
	ct, err := pokercrypto.DecodeCiphertext(cipher)
	if err != nil {
		return "", errors.Wrap(ErrUnavailable, err.Error())
	}
	var grants []string
	if owner != "" {
		grants = []string{owner}
	}
	return v.put(ct, grants), nil
}

func (v *Vault) VerifyInputProof(h Handle, proof []byte, ctx ProofContext) (bool, error) {
	ct, _, err := v.ciphertext(h)
	if err != nil {
		return false, err
	}
	sk, err := v.secretKey()
	if err != nil {
		return false, err
	}
	pk := pokercrypto.MulBase(sk)

	ip, err := pokercrypto.DecodeInputProof(proof)
	if err != nil {
		return false, nil
	}
	ok, err := pokercrypto.InputVerify(pk, ct, ip, ctx.fields()...)
	if err != nil {
		return false, errors.Wrap(ErrUnavailable, err.Error())
	}
	if !ok {
		return false, nil
	}

	// Well-formedness: the attested plaintext must be a usable amount.
	m, err := v.decryptValue(ct)
	if err != nil {
		return false, nil
	}
	return m >= 1 && m <= MaxAmount, nil
}

func (v *Vault) Add(a, b Handle) (Handle, error) {
	cta, ra, err := v.ciphertext(a)
	if err != nil {
		return "", err
	}
	ctb, _, err := v.ciphertext(b)
	if err != nil {
		return "", err
	}
	return v.put(pokercrypto.CiphertextAdd(cta, ctb), append([]string(nil), ra.Grants...)), nil
}

func (v *Vault) Subtract(a, b Handle) (Handle, error) {
	cta, ra, err := v.ciphertext(a)
	if err != nil {
		return "", err
	}
	ctb, _, err := v.ciphertext(b)
	if err != nil {
		return "", err
	}
	return v.put(pokercrypto.CiphertextSub(cta, ctb), append([]string(nil), ra.Grants...)), nil
}

func (v *Vault) CompareLessThan(a, b Handle) (bool, error) {
	cta, _, err := v.ciphertext(a)
	if err != nil {
		return false, err
	}
	ctb, _, err := v.ciphertext(b)
	if err != nil {
		return false, err
	}
	ma, err := v.decryptValue(cta)
	if err != nil {
		return false, err
	}
	mb, err := v.decryptValue(ctb)
	if err != nil {
		return false, err
	}
	// Only the boolean leaves the vault.
	return ma < mb, nil
}

func (v *Vault) Grant(h Handle, identity string) error {
	rec, err := v.record(h)
	if err != nil {
		return err
	}
	rec.AddGrant(identity)
	return nil
}

func (v *Vault) Revoke(h Handle, identity string) error {
	rec, err := v.record(h)
	if err != nil {
		return err
	}
	rec.RemoveGrant(identity)
	return nil
}

func (v *Vault) Decrypt(h Handle, identity string) (uint64, error) {
	ct, rec, err := v.ciphertext(h)
	if err != nil {
		return 0, err
	}
	if !rec.HasGrant(identity) {
		return 0, errors.Wrapf(ErrNotAuthorized, "identity=%s handle=%s", identity, h)
	}
	return v.decryptValue(ct)
}

func (v *Vault) Reveal(h Handle) (uint64, error) {
	ct, rec, err := v.ciphertext(h)
	if err != nil {
		return 0, err
	}
	m, err := v.decryptValue(ct)
	if err != nil {
		return 0, err
	}
	rec.AddGrant(state.PublicGrant)
	return m, nil
}

func (v *Vault) decryptValue(ct pokercrypto.ElGamalCiphertext) (uint64, error) {
	sk, err := v.secretKey()
	if err != nil {
		return 0, err
	}
	mp := pokercrypto.ElGamalDecrypt(sk, ct)
	m, ok := lookupDiscreteLog(mp)
	if !ok {
		return 0, errors.Wrap(ErrUnavailable, "plaintext outside amount range")
	}
	return m, nil
}
