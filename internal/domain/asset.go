package domain

import "fmt"

// AssetType distinguishes the two tradable instrument kinds we report on.
type AssetType string

const (
	AssetCrypto AssetType = "crypto"
	AssetStock  AssetType = "stock"
)

// Valid reports whether the asset type is one of the known values.
func (t AssetType) Valid() bool {
	return t == AssetCrypto || t == AssetStock
}

// Exchange identifies where an asset is traded.
type Exchange string

const (
	ExchangeBinance Exchange = "BINANCE"
	ExchangeNasdaq  Exchange = "NASDAQ"
)

// Valid reports whether the exchange is one of the supported venues.
func (e Exchange) Valid() bool {
	return e == ExchangeBinance || e == ExchangeNasdaq
}

// Asset describes one trading instrument; immutable for the duration of a run.
type Asset struct {
	Type     AssetType
	Symbol   string
	Exchange Exchange
	Alias    string
}

// Validate checks the asset fields that the pipeline relies on.
func (a Asset) Validate() error {
	if !a.Type.Valid() {
		return fmt.Errorf("asset %s: unknown asset type %q", a.Symbol, a.Type)
	}
	if !a.Exchange.Valid() {
		return fmt.Errorf("asset %s: unknown exchange %q", a.Symbol, a.Exchange)
	}
	if a.Symbol == "" {
		return fmt.Errorf("asset with alias %q: empty trading symbol", a.Alias)
	}
	return nil
}
