package schema

// UserAccountTable represents the 'users.account' table
type UserAccountTable struct {
	Table        string
	ID           string
	Email        string
	Username     string
	PasswordHash string
	Salt         string
	Verified     string
	Secret       string
	CreatedAt    string
	UpdatedAt    string
}

// UserAccount is the schema definition for users.account
var UserAccount = UserAccountTable{
	Table:        "users.account",
	ID:           "id",
	Email:        "email",
	Username:     "username",
	PasswordHash: "passwordhash",
	Salt:         "salt",
	Verified:     "verified",
	Secret:       "secret",
	CreatedAt:    "createdat",
	UpdatedAt:    "updatedat",
}

// Unique constraint names, used to tell an email clash from a username clash.
const (
	UserAccountEmailKey    = "account_email_key"
	UserAccountUsernameKey = "account_username_key"
)

// Columns returns all standard column names
func (t UserAccountTable) Columns() []string {
	return []string{
		t.ID, t.Email, t.Username, t.PasswordHash, t.Salt, t.Verified, t.Secret,
	}
}
