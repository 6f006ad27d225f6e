package wallet

import (
	"testing"

	"github.com/gagliardetto/solana-go"
	"github.com/mr-tron/base58"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewWallet(t *testing.T) {
	key := solana.NewWallet().PrivateKey

	w, err := NewWallet(base58.Encode(key))
	require.NoError(t, err)
	assert.Equal(t, key.PublicKey(), w.PublicKey)
	assert.Equal(t, key.PublicKey().String(), w.String())
}

func TestNewWallet_Invalid(t *testing.T) {
	_, err := NewWallet("not-base58-0OIl")
	assert.Error(t, err)

	_, err = NewWallet(base58.Encode([]byte{1, 2, 3}))
	assert.ErrorContains(t, err, "invalid private key length")
}

func TestWallet_SignTransactionReplacesPlaceholders(t *testing.T) {
	w := FromPrivateKey(solana.NewWallet().PrivateKey)
	to := solana.NewWallet().PublicKey()

	tx, err := solana.NewTransaction(
		[]solana.Instruction{
			solana.NewInstruction(solana.SystemProgramID, solana.AccountMetaSlice{
				solana.Meta(w.PublicKey).WRITE().SIGNER(),
				solana.Meta(to).WRITE(),
			}, []byte{2, 0, 0, 0, 1, 0, 0, 0, 0, 0, 0, 0}),
		},
		solana.Hash{},
		solana.TransactionPayer(w.PublicKey),
	)
	require.NoError(t, err)
	tx.Signatures = []solana.Signature{{}}

	require.NoError(t, w.SignTransaction(tx))
	require.Len(t, tx.Signatures, 1)
	assert.NotEqual(t, solana.Signature{}, tx.Signatures[0])
	assert.NoError(t, tx.VerifySignatures())
}

func TestWallet_SignTransactionForeignSigner(t *testing.T) {
	w := FromPrivateKey(solana.NewWallet().PrivateKey)
	other := solana.NewWallet().PublicKey()

	tx, err := solana.NewTransaction(
		[]solana.Instruction{
			solana.NewInstruction(solana.SystemProgramID, solana.AccountMetaSlice{
				solana.Meta(other).WRITE().SIGNER(),
			}, []byte{}),
		},
		solana.Hash{},
		solana.TransactionPayer(other),
	)
	require.NoError(t, err)

	assert.Error(t, w.SignTransaction(tx))
}

func TestWallet_GetATACached(t *testing.T) {
	w := FromPrivateKey(solana.NewWallet().PrivateKey)
	mint := solana.NewWallet().PublicKey()

	first, err := w.GetATA(mint)
	require.NoError(t, err)
	second, err := w.GetATA(mint)
	require.NoError(t, err)

	expected, _, err := solana.FindAssociatedTokenAddress(w.PublicKey, mint)
	require.NoError(t, err)
	assert.Equal(t, expected, first)
	assert.Equal(t, first, second)
}
