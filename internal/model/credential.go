package model

const (
	RoleAdmin    = "admin"
	RoleBusiness = "business"
)

// Credential is a row of api_v1_credentials. AuthKeyHash holds the bcrypt
// digest of the caller's auth key, never the key itself.
type Credential struct {
	Username    string `json:"username"`
	AuthKeyHash string `json:"-"`
	Role        string `json:"auth_level"`
	IsActive    bool   `json:"is_active"`
}

// NewCredential enumerates the fields recognized by credential creation.
// Zero values are replaced by the defaults: a generated auth key, the
// business role, and an active account.
type NewCredential struct {
	Username string
	AuthKey  string
	Role     string
	IsActive *bool
}

type CreatedCredential struct {
	AuthKey string `json:"auth_key"`
	Rows    int64  `json:"rows"`
}

// Identity is the authenticated caller recovered from a verified session
// token.
type Identity struct {
	Username string `json:"username"`
	Role     string `json:"auth_level"`
}
