package domain

// Session representa la identidad autenticada actual y su credencial.
type Session struct {
	User  User
	Token string
}

// Valid indica si la sesion tiene usuario y token. Una sesion parcial nunca es valida.
func (s Session) Valid() bool {
	return s.Token != "" && s.User.ID != ""
}
