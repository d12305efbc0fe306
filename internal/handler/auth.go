package handler

import (
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/l1jgo/horde/internal/net"
	"github.com/l1jgo/horde/internal/net/packet"
)

const (
	authOK       byte = 0x00
	authRejected byte = 0x01
	authDisabled byte = 0x02
)

// HandleAuth processes C_AUTH. Format: [opcode][password\0].
// Success promotes the session to Authenticated.
func HandleAuth(sess *net.Session, r *packet.Reader, deps *Deps) {
	password := r.ReadS()

	if deps.AdminPasswordHash == "" {
		sendAuthResult(sess, authDisabled)
		return
	}
	if err := bcrypt.CompareHashAndPassword([]byte(deps.AdminPasswordHash), []byte(password)); err != nil {
		deps.Log.Warn("feed auth rejected", zap.Uint64("session", sess.ID), zap.String("ip", sess.IP))
		sendAuthResult(sess, authRejected)
		return
	}

	sess.SetState(packet.StateAuthenticated)
	deps.Log.Info("feed client authenticated", zap.Uint64("session", sess.ID))
	sendAuthResult(sess, authOK)
}

func sendAuthResult(sess *net.Session, code byte) {
	w := packet.NewWriterWithOpcode(packet.S_OPCODE_AUTH_RESULT)
	w.WriteC(code)
	sess.Send(w.Bytes())
}

// HashPassword returns a bcrypt hash suitable for feed.admin_password_hash.
func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}
