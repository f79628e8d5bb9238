package domain

// AdminSession is the authenticated context the platform hands us for a
// request: which shop and the token to call its Admin API with.
type AdminSession struct {
	Shop        string `json:"shop"`
	AccessToken string `json:"accessToken"`
	Scope       string `json:"scope,omitempty"`
}
