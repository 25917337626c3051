package interfaces

// -----------------------------------------------------------------------------
// IConnectivityProbe reports network reachability and its transitions.
// -----------------------------------------------------------------------------

type IConnectivityProbe interface {

	// IsOnline returns the last observed state.
	IsOnline() bool

	// -----------------------------------------------------------------------------

	// Subscribe registers fn for online/offline transitions.
	// The returned function removes the subscription.
	Subscribe(fn func(online bool)) (unsubscribe func())
}
