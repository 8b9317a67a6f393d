package wire

// Status represents a response status code.
type Status uint8

const (
	// StatusSuccess indicates the call completed successfully.
	StatusSuccess Status = 0

	// StatusUnknownMethod indicates the host does not implement the method.
	StatusUnknownMethod Status = 1

	// StatusSDKError indicates the SDK returned an error; see Response.Error.
	StatusSDKError Status = 2

	// StatusUnavailable indicates the SDK is not ready.
	StatusUnavailable Status = 3

	// StatusTimeout indicates the call timed out on the host.
	StatusTimeout Status = 4
)

// String returns the status name.
func (s Status) String() string {
	switch s {
	case StatusSuccess:
		return "SUCCESS"
	case StatusUnknownMethod:
		return "UNKNOWN_METHOD"
	case StatusSDKError:
		return "SDK_ERROR"
	case StatusUnavailable:
		return "UNAVAILABLE"
	case StatusTimeout:
		return "TIMEOUT"
	default:
		return "UNKNOWN"
	}
}
