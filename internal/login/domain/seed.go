package domain

// SeedAccount is a fixed row inserted at schema-initialisation time. The
// password is plaintext input and gets hashed before it reaches the store.
type SeedAccount struct {
	ID       int64  `yaml:"id"`
	Username string `yaml:"username"`
	IsAdmin  bool   `yaml:"is_admin"`
	Password string `yaml:"password"`
}
