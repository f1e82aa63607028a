package service

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"go.uber.org/zap"

	"walletguard/internal/config"
)

const usdtContract = "0xdac17f958d2ee523a2206206994597c13d831ec7"

// fakeCoinGeckoClient counts calls; unknown contracts return an error so the
// chain falls through, mirroring the real client.
type fakeCoinGeckoClient struct {
	nativePrice float64
	nativeErr   error
	tokenPrices map[string]float64

	nativeCalls int
	tokenCalls  int
}

func (f *fakeCoinGeckoClient) GetNativePrice(context.Context) (float64, error) {
	f.nativeCalls++
	return f.nativePrice, f.nativeErr
}

func (f *fakeCoinGeckoClient) GetTokenPrice(_ context.Context, contract string) (float64, error) {
	f.tokenCalls++
	price, ok := f.tokenPrices[contract]
	if !ok {
		return 0, errors.New("contract not priced")
	}
	return price, nil
}

type fakeOneInchClient struct {
	tokenPrices map[string]float64
	tokenCalls  int
}

func (f *fakeOneInchClient) GetTokenPrice(_ context.Context, contract string) (float64, error) {
	f.tokenCalls++
	price, ok := f.tokenPrices[contract]
	if !ok {
		return 0, errors.New("contract not priced")
	}
	return price, nil
}

func testPriceConfig() config.PriceServiceConfig {
	return config.PriceServiceConfig{
		NativeCacheTTLSeconds: 60,
		QuoteCacheTTLSeconds:  60,
		MaxLiveQuotesPerBatch: 15,
		RequestsPerSecond:     10000, // no pacing in unit tests
		FallbackNativePrice:   3500,
	}
}

func TestTokenPriceStablecoinOverrideSkipsLiveSources(t *testing.T) {
	coingecko := &fakeCoinGeckoClient{}
	oneinch := &fakeOneInchClient{}
	svc := NewPriceService(coingecko, oneinch, NewNativePriceCache(time.Minute), testPriceConfig(), zap.NewNop())

	price := svc.TokenPrice(context.Background(), usdtContract)
	if price != 1.00 {
		t.Errorf("expected stablecoin price 1.00, got %v", price)
	}
	if coingecko.tokenCalls != 0 || oneinch.tokenCalls != 0 {
		t.Errorf("stablecoin lookup must not hit live sources (coingecko=%d, 1inch=%d)",
			coingecko.tokenCalls, oneinch.tokenCalls)
	}
}

func TestTokenPriceFallsThroughToSecondarySource(t *testing.T) {
	contract := "0xcccccccccccccccccccccccccccccccccccccccc"
	coingecko := &fakeCoinGeckoClient{}
	oneinch := &fakeOneInchClient{tokenPrices: map[string]float64{contract: 0.042}}
	svc := NewPriceService(coingecko, oneinch, NewNativePriceCache(time.Minute), testPriceConfig(), zap.NewNop())

	price := svc.TokenPrice(context.Background(), contract)
	if price != 0.042 {
		t.Errorf("expected secondary-source price 0.042, got %v", price)
	}
	if coingecko.tokenCalls != 1 || oneinch.tokenCalls != 1 {
		t.Errorf("expected one call per source, got coingecko=%d, 1inch=%d",
			coingecko.tokenCalls, oneinch.tokenCalls)
	}
}

func TestTokenPriceUnresolvedIsZeroAndCached(t *testing.T) {
	contract := "0xdddddddddddddddddddddddddddddddddddddddd"
	coingecko := &fakeCoinGeckoClient{}
	oneinch := &fakeOneInchClient{}
	svc := NewPriceService(coingecko, oneinch, NewNativePriceCache(time.Minute), testPriceConfig(), zap.NewNop())

	if price := svc.TokenPrice(context.Background(), contract); price != 0 {
		t.Errorf("expected unresolved price 0, got %v", price)
	}
	// Second lookup must be answered from the quote cache.
	if price := svc.TokenPrice(context.Background(), contract); price != 0 {
		t.Errorf("expected cached zero price, got %v", price)
	}
	if coingecko.tokenCalls != 1 || oneinch.tokenCalls != 1 {
		t.Errorf("unresolved outcome not cached: coingecko=%d, 1inch=%d",
			coingecko.tokenCalls, oneinch.tokenCalls)
	}
}

func TestTokenPriceNormalizesContractCase(t *testing.T) {
	coingecko := &fakeCoinGeckoClient{}
	oneinch := &fakeOneInchClient{}
	svc := NewPriceService(coingecko, oneinch, NewNativePriceCache(time.Minute), testPriceConfig(), zap.NewNop())

	upper := "0xDAC17F958D2EE523A2206206994597C13D831EC7"
	if price := svc.TokenPrice(context.Background(), upper); price != 1.00 {
		t.Errorf("mixed-case contract should hit the stablecoin table, got %v", price)
	}
}

func TestTokenPricesCapsLiveLookups(t *testing.T) {
	coingecko := &fakeCoinGeckoClient{tokenPrices: map[string]float64{}}
	contracts := make([]string, 20)
	for i := range contracts {
		contracts[i] = fmt.Sprintf("0x%040x", i+1)
		coingecko.tokenPrices[contracts[i]] = float64(i + 1)
	}
	oneinch := &fakeOneInchClient{}
	svc := NewPriceService(coingecko, oneinch, NewNativePriceCache(time.Minute), testPriceConfig(), zap.NewNop())

	prices := svc.TokenPrices(context.Background(), contracts)

	if len(prices) != 20 {
		t.Fatalf("expected a price entry for every contract, got %d", len(prices))
	}
	if coingecko.tokenCalls != 15 {
		t.Errorf("expected exactly 15 live lookups, got %d", coingecko.tokenCalls)
	}
	for i, contract := range contracts {
		want := float64(i + 1)
		if i >= 15 {
			want = 0
		}
		if prices[contract] != want {
			t.Errorf("contract %d: expected price %v, got %v", i, want, prices[contract])
		}
	}
}

func TestNativePriceCachesFallbackOnFailure(t *testing.T) {
	coingecko := &fakeCoinGeckoClient{nativeErr: errors.New("rate limited")}
	oneinch := &fakeOneInchClient{}
	svc := NewPriceService(coingecko, oneinch, NewNativePriceCache(time.Minute), testPriceConfig(), zap.NewNop())

	if price := svc.NativePrice(context.Background()); price != 3500 {
		t.Errorf("expected fallback price 3500, got %v", price)
	}
	// The fallback is cached for the TTL; the failing source is not retried.
	if price := svc.NativePrice(context.Background()); price != 3500 {
		t.Errorf("expected cached fallback price, got %v", price)
	}
	if coingecko.nativeCalls != 1 {
		t.Errorf("expected a single refresh attempt, got %d", coingecko.nativeCalls)
	}
}

func TestNativePriceServedFromCache(t *testing.T) {
	coingecko := &fakeCoinGeckoClient{nativePrice: 3150.25}
	oneinch := &fakeOneInchClient{}
	svc := NewPriceService(coingecko, oneinch, NewNativePriceCache(time.Minute), testPriceConfig(), zap.NewNop())

	for i := 0; i < 3; i++ {
		if price := svc.NativePrice(context.Background()); price != 3150.25 {
			t.Fatalf("call %d: expected 3150.25, got %v", i, price)
		}
	}
	if coingecko.nativeCalls != 1 {
		t.Errorf("expected one upstream refresh for three reads, got %d", coingecko.nativeCalls)
	}
}
