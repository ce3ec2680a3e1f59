package session

import "time"

// Cookie is the cookie metadata a framework keeps next to the session data.
// MaxAge is in milliseconds; nil means a browser-session cookie.
type Cookie struct {
	MaxAge   *int64     `json:"maxAge,omitempty"`
	Expires  *time.Time `json:"expires,omitempty"`
	Path     string     `json:"path,omitempty"`
	Domain   string     `json:"domain,omitempty"`
	HTTPOnly bool       `json:"httpOnly,omitempty"`
	Secure   bool       `json:"secure,omitempty"`
	SameSite string     `json:"sameSite,omitempty"`
}

// Session is the record stored under a session id.
type Session struct {
	Cookie Cookie         `json:"cookie"`
	Values map[string]any `json:"values,omitempty"`
}

// MaxAge converts d into the millisecond form used by Cookie.MaxAge.
func MaxAge(d time.Duration) *int64 {
	ms := d.Milliseconds()
	return &ms
}
