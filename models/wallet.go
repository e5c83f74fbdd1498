package models

// Wallet is a point-in-time balance snapshot, never cached across
// decision passes.
type Wallet struct {
	UsdHold      float64
	UsdAvailable float64
	BtcHold      float64
	BtcAvailable float64
}
