package confidential

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MichaelBrownui/PrivacyPoker/internal/state"
)

func newTestVault(t *testing.T) *Vault {
	t.Helper()
	return NewVault(state.NewVaultStore())
}

func TestEncryptDecryptRoundtrip(t *testing.T) {
	v := newTestVault(t)

	h, err := v.Encrypt(42, "alice")
	require.NoError(t, err)

	m, err := v.Decrypt(h, "alice")
	require.NoError(t, err)
	assert.EqualValues(t, 42, m)

	_, err = v.Decrypt(h, "bob")
	assert.ErrorIs(t, err, ErrNotAuthorized)

	_, err = v.Decrypt(Handle("ct-999"), "alice")
	assert.ErrorIs(t, err, ErrUnknownHandle)
}

func TestEncryptRejectsOutOfRange(t *testing.T) {
	v := newTestVault(t)

	_, err := v.Encrypt(MaxAmount+1, "alice")
	assert.ErrorIs(t, err, ErrOutOfRange)

	h, err := v.Encrypt(MaxAmount, "alice")
	require.NoError(t, err)
	m, err := v.Decrypt(h, "alice")
	require.NoError(t, err)
	assert.Equal(t, MaxAmount, m)
}

func TestAccumulatedSumsStayDecryptable(t *testing.T) {
	// Pots add several maximum amounts together; the sum must still decrypt
	// even though no single Encrypt would accept it.
	v := newTestVault(t)

	h, err := v.Encrypt(MaxAmount, "alice")
	require.NoError(t, err)
	other, err := v.Encrypt(MaxAmount, "alice")
	require.NoError(t, err)
	for i := 0; i < 3; i++ {
		h, err = v.Add(h, other)
		require.NoError(t, err)
	}

	m, err := v.Decrypt(h, "alice")
	require.NoError(t, err)
	assert.Equal(t, 4*MaxAmount, m)
}

func TestHomomorphicArithmetic(t *testing.T) {
	v := newTestVault(t)

	a, err := v.Encrypt(30, "alice")
	require.NoError(t, err)
	b, err := v.Encrypt(12, "bob")
	require.NoError(t, err)

	sum, err := v.Add(a, b)
	require.NoError(t, err)
	m, err := v.Decrypt(sum, "alice")
	require.NoError(t, err)
	assert.EqualValues(t, 42, m)

	// The result carries the first operand's grants only.
	_, err = v.Decrypt(sum, "bob")
	assert.ErrorIs(t, err, ErrNotAuthorized)

	diff, err := v.Subtract(a, b)
	require.NoError(t, err)
	m, err = v.Decrypt(diff, "alice")
	require.NoError(t, err)
	assert.EqualValues(t, 18, m)
}

func TestCompareLessThanRevealsOnlyBoolean(t *testing.T) {
	v := newTestVault(t)

	small, err := v.Encrypt(5, "")
	require.NoError(t, err)
	big, err := v.Encrypt(100, "")
	require.NoError(t, err)

	lt, err := v.CompareLessThan(small, big)
	require.NoError(t, err)
	assert.True(t, lt)

	lt, err = v.CompareLessThan(big, small)
	require.NoError(t, err)
	assert.False(t, lt)

	lt, err = v.CompareLessThan(small, small)
	require.NoError(t, err)
	assert.False(t, lt)

	// Neither operand became decryptable as a side effect.
	_, err = v.Decrypt(small, "anyone")
	assert.ErrorIs(t, err, ErrNotAuthorized)
}

func TestGrantRevokeReveal(t *testing.T) {
	v := newTestVault(t)

	h, err := v.Encrypt(7, "alice")
	require.NoError(t, err)

	require.NoError(t, v.Grant(h, "bob"))
	m, err := v.Decrypt(h, "bob")
	require.NoError(t, err)
	assert.EqualValues(t, 7, m)

	require.NoError(t, v.Revoke(h, "bob"))
	_, err = v.Decrypt(h, "bob")
	assert.ErrorIs(t, err, ErrNotAuthorized)

	// Reveal makes the value world-readable.
	m, err = v.Reveal(h)
	require.NoError(t, err)
	assert.EqualValues(t, 7, m)
	m, err = v.Decrypt(h, "stranger")
	require.NoError(t, err)
	assert.EqualValues(t, 7, m)
}

func TestInputProofFlow(t *testing.T) {
	v := newTestVault(t)
	ctx := ProofContext{GameID: "g1", Identity: "alice", Action: "raise"}

	cipher, proof, err := EncryptInput(v.PublicKey(), 250, []byte("entropy"), ctx)
	require.NoError(t, err)

	h, err := v.Import(cipher, "alice")
	require.NoError(t, err)

	ok, err := v.VerifyInputProof(h, proof, ctx)
	require.NoError(t, err)
	assert.True(t, ok)

	m, err := v.Decrypt(h, "alice")
	require.NoError(t, err)
	assert.EqualValues(t, 250, m)
}

func TestInputProofRejectsWrongContext(t *testing.T) {
	v := newTestVault(t)
	ctx := ProofContext{GameID: "g1", Identity: "alice", Action: "raise"}

	cipher, proof, err := EncryptInput(v.PublicKey(), 250, []byte("entropy"), ctx)
	require.NoError(t, err)
	h, err := v.Import(cipher, "alice")
	require.NoError(t, err)

	for _, bad := range []ProofContext{
		{GameID: "g2", Identity: "alice", Action: "raise"},
		{GameID: "g1", Identity: "bob", Action: "raise"},
		{GameID: "g1", Identity: "alice", Action: "call"},
	} {
		ok, err := v.VerifyInputProof(h, proof, bad)
		require.NoError(t, err)
		assert.False(t, ok, "context %+v must not verify", bad)
	}
}

func TestInputProofRejectsOutOfRange(t *testing.T) {
	v := newTestVault(t)
	ctx := ProofContext{GameID: "g1", Identity: "alice", Action: "raise"}

	// Zero is not a usable amount even with a valid proof.
	cipher, proof, err := EncryptInput(v.PublicKey(), 0, []byte("entropy"), ctx)
	require.NoError(t, err)
	h, err := v.Import(cipher, "alice")
	require.NoError(t, err)
	ok, err := v.VerifyInputProof(h, proof, ctx)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestInputProofRejectsGarbage(t *testing.T) {
	v := newTestVault(t)
	ctx := ProofContext{GameID: "g1", Identity: "alice", Action: "raise"}

	cipher, _, err := EncryptInput(v.PublicKey(), 10, []byte("entropy"), ctx)
	require.NoError(t, err)
	h, err := v.Import(cipher, "alice")
	require.NoError(t, err)

	ok, err := v.VerifyInputProof(h, []byte("short"), ctx)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestDeterministicEncryption(t *testing.T) {
	// Two vaults with the same key and allocation counter must emit the
	// same ciphertext, or replicas would diverge.
	v1 := newTestVault(t)
	v2 := newTestVault(t)

	h1, err := v1.Encrypt(99, "alice")
	require.NoError(t, err)
	h2, err := v2.Encrypt(99, "alice")
	require.NoError(t, err)
	require.Equal(t, h1, h2)

	r1 := v1.store.Records[string(h1)]
	r2 := v2.store.Records[string(h2)]
	assert.Equal(t, r1.C1, r2.C1)
	assert.Equal(t, r1.C2, r2.C2)
}

func TestInitKeyIsIdempotent(t *testing.T) {
	store := state.NewVaultStore()
	v := NewVault(store)

	require.NoError(t, v.InitKey([]byte("seed-a")))
	key := append([]byte(nil), store.Key...)
	require.NoError(t, v.InitKey([]byte("seed-b")))
	assert.Equal(t, key, store.Key)
}
