// internal/monitor/seller_test.go
package monitor

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/gagliardetto/solana-go"
	"github.com/rovshanmuradov/trend-sniper/internal/dex"
	"github.com/rovshanmuradov/trend-sniper/internal/dex/paper"
	"github.com/rovshanmuradov/trend-sniper/internal/storage/models"
	"github.com/rovshanmuradov/trend-sniper/internal/wallet"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

type mockTokenSeller struct {
	mock.Mock
}

func (m *mockTokenSeller) Sell(ctx context.Context, mint string, rawAmount uint64) (*dex.SwapResult, error) {
	args := m.Called(ctx, mint, rawAmount)
	res, _ := args.Get(0).(*dex.SwapResult)
	return res, args.Error(1)
}

type mockBalance struct {
	mock.Mock
}

func (m *mockBalance) GetTokenAccountBalance(ctx context.Context, account solana.PublicKey) (uint64, error) {
	args := m.Called(ctx, account)
	return args.Get(0).(uint64), args.Error(1)
}

func sellerPosition() *models.Position {
	mint := solana.NewWallet().PublicKey().String()
	return models.NewPosition(mint, "TST", nil, testNow, 1, 0.0001, 2.5, "buy-sig")
}

func TestSwapSeller_SellsWalletBalance(t *testing.T) {
	w := wallet.FromPrivateKey(solana.NewWallet().PrivateKey)
	p := sellerPosition()
	ata, err := w.GetATA(solana.MustPublicKeyFromBase58(p.TokenAddress))
	require.NoError(t, err)

	chain := &mockBalance{}
	chain.On("GetTokenAccountBalance", mock.Anything, ata).Return(uint64(3_000_000), nil)
	executor := &mockTokenSeller{}
	executor.On("Sell", mock.Anything, p.TokenAddress, uint64(3_000_000)).
		Return(&dex.SwapResult{Signature: "sell-sig", OutAmount: 120_000}, nil)

	s := NewSwapSeller(executor, w, chain, 0, zaptest.NewLogger(t))
	res, err := s.Sell(context.Background(), p)
	require.NoError(t, err)
	assert.Equal(t, "sell-sig", res.Signature)
	assert.InDelta(t, 0.00012, res.AmountSOL, 1e-15)
}

func TestSwapSeller_FallsBackToRecordedAmount(t *testing.T) {
	w := wallet.FromPrivateKey(solana.NewWallet().PrivateKey)
	p := sellerPosition()

	chain := &mockBalance{}
	chain.On("GetTokenAccountBalance", mock.Anything, mock.Anything).Return(uint64(0), errors.New("could not find account"))
	executor := &mockTokenSeller{}
	executor.On("Sell", mock.Anything, p.TokenAddress, uint64(2_500_000)).
		Return(&dex.SwapResult{Signature: "sell-sig"}, nil)

	s := NewSwapSeller(executor, w, chain, dex.DefaultTokenDecimals, zaptest.NewLogger(t))
	_, err := s.Sell(context.Background(), p)
	require.NoError(t, err)
	executor.AssertExpectations(t)
}

func TestSwapSeller_NoWallet(t *testing.T) {
	p := sellerPosition()
	executor := &mockTokenSeller{}
	executor.On("Sell", mock.Anything, p.TokenAddress, uint64(2_500_000)).
		Return(nil, errors.New("no route"))

	s := NewSwapSeller(executor, nil, nil, 0, zaptest.NewLogger(t))
	_, err := s.Sell(context.Background(), p)
	assert.ErrorContains(t, err, "no route")
}

func TestSwapSeller_NothingToSell(t *testing.T) {
	p := sellerPosition()
	p.NumTokensBought = 0
	executor := &mockTokenSeller{}

	s := NewSwapSeller(executor, nil, nil, 0, zaptest.NewLogger(t))
	_, err := s.Sell(context.Background(), p)
	assert.Error(t, err)
	executor.AssertNotCalled(t, "Sell", mock.Anything, mock.Anything, mock.Anything)
}

func TestPaperSeller(t *testing.T) {
	p := sellerPosition()
	res, err := PaperSeller{}.Sell(context.Background(), p)
	require.NoError(t, err)
	assert.Equal(t, p.BuyAmountSOL, res.AmountSOL)
	assert.True(t, strings.HasPrefix(res.Signature, paper.SignaturePrefix))
}
