package outbound

// ConnectivityMonitor reports network reachability. Subscribe delivers a
// value on every state transition, true meaning the device went online.
type ConnectivityMonitor interface {
	Online() bool
	Subscribe() <-chan bool
}
