package http

import (
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"log"
	"time"

	"github.com/gofiber/fiber/v2"
)

const (
	flashCookie = "weatherlog_flash"
	flashLocals = "flashes"
)

// Flash is a one-time notice shown on the next rendered page
type Flash struct {
	Category string `json:"category"`
	Message  string `json:"message"`
}

type flashState struct {
	messages  []Flash
	hadCookie bool
}

// CookieKey derives the encryptcookie key (base64 of 32 bytes) from the
// configured secret
func CookieKey(secret string) string {
	sum := sha256.Sum256([]byte(secret))
	return base64.StdEncoding.EncodeToString(sum[:])
}

// addFlash queues a notice and persists the queue in the flash cookie so it
// survives a redirect
func addFlash(c *fiber.Ctx, category, message string) {
	st := loadFlashes(c)
	st.messages = append(st.messages, Flash{Category: category, Message: message})
	writeFlashCookie(c, st.messages)
}

// popFlashes returns and clears every queued notice
func popFlashes(c *fiber.Ctx) []Flash {
	st := loadFlashes(c)
	messages := st.messages
	if st.hadCookie || len(messages) > 0 {
		writeFlashCookie(c, nil)
	}
	st.messages = nil
	st.hadCookie = false
	return messages
}

func loadFlashes(c *fiber.Ctx) *flashState {
	if st, ok := c.Locals(flashLocals).(*flashState); ok {
		return st
	}

	st := &flashState{}
	if raw := c.Cookies(flashCookie); raw != "" {
		st.hadCookie = true
		data, err := base64.RawURLEncoding.DecodeString(raw)
		if err == nil {
			err = json.Unmarshal(data, &st.messages)
		}
		if err != nil {
			log.Printf("Discarding unreadable flash cookie: %v", err)
			st.messages = nil
		}
	}
	c.Locals(flashLocals, st)
	return st
}

func writeFlashCookie(c *fiber.Ctx, messages []Flash) {
	cookie := &fiber.Cookie{
		Name:     flashCookie,
		Path:     "/",
		HTTPOnly: true,
		SameSite: fiber.CookieSameSiteLaxMode,
	}

	if len(messages) == 0 {
		cookie.Expires = time.Unix(0, 0)
		c.Cookie(cookie)
		return
	}

	data, err := json.Marshal(messages)
	if err != nil {
		log.Printf("Failed to encode flash messages: %v", err)
		return
	}
	cookie.Value = base64.RawURLEncoding.EncodeToString(data)
	c.Cookie(cookie)
}
