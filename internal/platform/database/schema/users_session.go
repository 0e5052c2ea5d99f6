package schema

// UserSessionTable represents the 'users.session' table
type UserSessionTable struct {
	Table      string
	UserID     string
	Token      string
	Expiration string
}

// UserSession is the schema definition for users.session
var UserSession = UserSessionTable{
	Table:      "users.session",
	UserID:     "userid",
	Token:      "token",
	Expiration: "expiration",
}

// Columns returns all standard column names
func (t UserSessionTable) Columns() []string {
	return []string{t.UserID, t.Token, t.Expiration}
}
