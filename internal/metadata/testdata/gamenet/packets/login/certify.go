package login

// AuthResult is the outcome of a login attempt.
type AuthResult uint8

const (
	AuthOK AuthResult = iota
	AuthBadPassword
)

// CertifyPacket is sent by the client to log in.
type CertifyPacket struct {
	// Username is the account name.
	Username     string
	Password     string // Password is hashed on the client.
	BuildVersion *int32
	Result       AuthResult
	Tags         []string
	Stats        map[string]float64
	hidden       int
}
