package middleware

import (
	"errors"
	"fmt"
	"net/http"
	"time"
	"unicode/utf8"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
)

const (
	// FlashCookie is the name of the cookie carrying the pending message
	FlashCookie = "flash"

	flashTTL        = 5 * time.Minute
	maxFlashMessage = 1500
	// signed value budget, leaving room for the name and attributes
	// within the 4096 byte cookie limit
	maxFlashCookie = 3800
)

// Flash categories, matching the CSS classes of the views
const (
	FlashDanger  = "danger"
	FlashSuccess = "success"
	FlashInfo    = "info"
)

// Flash is a one-shot message shown on the next rendered page.
// Values optionally refill the entry form.
type Flash struct {
	Category string
	Message  string
	Values   map[string]string
}

type flashClaims struct {
	Category string            `json:"cat"`
	Message  string            `json:"msg"`
	Values   map[string]string `json:"val,omitempty"`
	jwt.RegisteredClaims
}

// Flasher stores flash messages in an HMAC signed cookie
type Flasher struct {
	secret []byte
	secure bool
	now    func() time.Time
}

// NewFlasher creates a Flasher signing cookies with secret. Secure marks
// the cookie HTTPS-only.
func NewFlasher(secret string, secure bool) *Flasher {
	return &Flasher{secret: []byte(secret), secure: secure, now: time.Now}
}

// Set attaches f to the response. When the signed cookie would exceed
// maxFlashCookie, form values are dropped longest first, then the message is
// shortened.
func (fl *Flasher) Set(c *gin.Context, f Flash) error {
	now := fl.now()
	claims := flashClaims{
		Category: f.Category,
		Message:  truncate(f.Message, maxFlashMessage),
		Values:   make(map[string]string, len(f.Values)),
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(flashTTL)),
		},
	}
	for k, v := range f.Values {
		claims.Values[k] = v
	}

	signed, err := fl.sign(claims)
	if err != nil {
		return err
	}
	for len(signed) > maxFlashCookie && len(claims.Values) > 0 {
		delete(claims.Values, longestValue(claims.Values))
		if signed, err = fl.sign(claims); err != nil {
			return err
		}
	}
	for len(signed) > maxFlashCookie && claims.Message != "" {
		// base64 grows the payload by 4/3; the ellipsis adds 3 bytes
		keep := len(claims.Message) - (len(signed)-maxFlashCookie)*3/4 - 4
		if keep <= 0 {
			claims.Message = ""
		} else {
			claims.Message = truncate(claims.Message, keep)
		}
		if signed, err = fl.sign(claims); err != nil {
			return err
		}
	}

	fl.writeCookie(c, signed, int(flashTTL.Seconds()))
	return nil
}

func (fl *Flasher) sign(claims flashClaims) (string, error) {
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(fl.secret)
	if err != nil {
		return "", fmt.Errorf("sign flash: %w", err)
	}
	return signed, nil
}

func longestValue(values map[string]string) string {
	var key string
	found := false
	for k, v := range values {
		if !found || len(v) > len(values[key]) || (len(v) == len(values[key]) && k < key) {
			key, found = k, true
		}
	}
	return key
}

// Pop returns the pending flash and clears the cookie. Missing, expired or
// tampered cookies yield false.
func (fl *Flasher) Pop(c *gin.Context) (Flash, bool) {
	raw, err := c.Cookie(FlashCookie)
	if err != nil || raw == "" {
		return Flash{}, false
	}
	fl.writeCookie(c, "", -1)

	f, err := fl.decode(raw)
	if err != nil {
		return Flash{}, false
	}
	return f, true
}

func (fl *Flasher) decode(raw string) (Flash, error) {
	token, err := jwt.ParseWithClaims(raw, &flashClaims{}, func(token *jwt.Token) (interface{}, error) {
		return fl.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(fl.now),
	)
	if err != nil {
		return Flash{}, err
	}

	claims, ok := token.Claims.(*flashClaims)
	if !ok || !token.Valid {
		return Flash{}, errors.New("invalid flash claims")
	}
	return Flash{Category: claims.Category, Message: claims.Message, Values: claims.Values}, nil
}

func (fl *Flasher) writeCookie(c *gin.Context, value string, maxAge int) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(FlashCookie, value, maxAge, "/", "", fl.secure, true)
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	s = s[:max]
	for !utf8.ValidString(s) {
		s = s[:len(s)-1]
	}
	return s + "…"
}
