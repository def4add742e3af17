package chatview

// Session is the explicit authentication context handed to the view
// layer. It replaces any notion of ambient global user state: whoever
// constructs a Window decides which user it acts as, and clearing the
// session is just dropping the object.
type Session struct {
	User  Author
	Token string
}

func NewSession(user Author, token string) *Session {
	return &Session{User: user, Token: token}
}

// Valid reports whether the session identifies a user. Protected
// operations are no-ops without a valid session.
func (s *Session) Valid() bool {
	return s != nil && s.User.ID != ""
}
