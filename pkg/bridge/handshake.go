package bridge

import (
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"errors"
	"fmt"
	"io"
	"time"

	"golang.org/x/crypto/hkdf"

	"github.com/mobile-access/readers-go/pkg/transport"
	"github.com/mobile-access/readers-go/pkg/wire"
)

// KeyInfo is the HKDF info string binding derived keys to this protocol.
const KeyInfo = "readers-bridge/1"

// DefaultHandshakeTimeout bounds each handshake step.
const DefaultHandshakeTimeout = 5 * time.Second

// Proof labels keep the two directions from being replayed against each other.
const (
	labelServer = "server"
	labelClient = "client"
)

// Handshake errors.
var (
	ErrAuthFailed      = errors.New("pairing authentication failed")
	ErrVersionMismatch = errors.New("protocol version mismatch")
	ErrHandshake       = errors.New("handshake failed")
)

// deriveKey expands the pairing secret into a per-connection proof key.
func deriveKey(secret, clientNonce, serverNonce []byte) ([]byte, error) {
	salt := make([]byte, 0, len(clientNonce)+len(serverNonce))
	salt = append(salt, clientNonce...)
	salt = append(salt, serverNonce...)

	key := make([]byte, sha256.Size)
	if _, err := io.ReadFull(hkdf.New(sha256.New, secret, salt, []byte(KeyInfo)), key); err != nil {
		return nil, fmt.Errorf("derive key: %w", err)
	}
	return key, nil
}

func computeProof(key []byte, label string, clientNonce, serverNonce []byte) []byte {
	mac := hmac.New(sha256.New, key)
	mac.Write([]byte(label))
	mac.Write(clientNonce)
	mac.Write(serverNonce)
	return mac.Sum(nil)
}

func newNonce() ([]byte, error) {
	nonce := make([]byte, wire.NonceSize)
	if _, err := rand.Read(nonce); err != nil {
		return nil, fmt.Errorf("generate nonce: %w", err)
	}
	return nonce, nil
}

// receive reads the next message, expecting type T. A Close control is
// translated into the matching handshake error.
func receive[T wire.Message](conn *transport.Conn, timeout time.Duration) (T, error) {
	var zero T

	msg, err := conn.ReceiveMessage(timeout)
	if err != nil {
		return zero, fmt.Errorf("%w: %v", ErrHandshake, err)
	}
	if ctrl, ok := msg.(*wire.Control); ok && ctrl.Type == wire.ControlClose {
		switch ctrl.Reason {
		case wire.CloseAuthFailed:
			return zero, ErrAuthFailed
		case wire.CloseVersion:
			return zero, ErrVersionMismatch
		default:
			return zero, fmt.Errorf("%w: peer closed (%s)", ErrHandshake, ctrl.Reason)
		}
	}
	typed, ok := msg.(T)
	if !ok {
		return zero, fmt.Errorf("%w: unexpected %s message", ErrHandshake, msg.MessageKind())
	}
	return typed, nil
}

// clientHandshake runs the screen side and returns the host's session ID
// and name.
func clientHandshake(conn *transport.Conn, name string, secret []byte, timeout time.Duration) (sessionID, hostName string, err error) {
	clientNonce, err := newNonce()
	if err != nil {
		return "", "", err
	}

	if err := conn.SendMessage(&wire.Hello{Version: wire.ProtocolVersion, Name: name, Nonce: clientNonce}); err != nil {
		return "", "", fmt.Errorf("%w: %v", ErrHandshake, err)
	}

	ch, err := receive[*wire.Challenge](conn, timeout)
	if err != nil {
		return "", "", err
	}
	if ch.Version != wire.ProtocolVersion {
		_ = conn.SendClose(wire.CloseVersion)
		return "", "", fmt.Errorf("%w: host speaks %d", ErrVersionMismatch, ch.Version)
	}
	if len(ch.Nonce) != wire.NonceSize {
		return "", "", fmt.Errorf("%w: bad nonce length %d", ErrHandshake, len(ch.Nonce))
	}

	reply := &wire.Proof{}
	if ch.AuthRequired {
		if len(secret) == 0 {
			_ = conn.SendClose(wire.CloseAuthFailed)
			return "", "", fmt.Errorf("%w: host requires a pairing secret", ErrAuthFailed)
		}
		key, err := deriveKey(secret, clientNonce, ch.Nonce)
		if err != nil {
			return "", "", err
		}
		if !hmac.Equal(ch.Proof, computeProof(key, labelServer, clientNonce, ch.Nonce)) {
			_ = conn.SendClose(wire.CloseAuthFailed)
			return "", "", fmt.Errorf("%w: host proof mismatch", ErrAuthFailed)
		}
		reply.Proof = computeProof(key, labelClient, clientNonce, ch.Nonce)
	}

	if err := conn.SendMessage(reply); err != nil {
		return "", "", fmt.Errorf("%w: %v", ErrHandshake, err)
	}

	welcome, err := receive[*wire.Welcome](conn, timeout)
	if err != nil {
		return "", "", err
	}
	return welcome.SessionID, ch.Name, nil
}

// serverHandshake runs the host side up to, but not including, the
// Welcome. It returns the screen's name.
func serverHandshake(conn *transport.Conn, name string, secret []byte, timeout time.Duration) (string, error) {
	hello, err := receive[*wire.Hello](conn, timeout)
	if err != nil {
		return "", err
	}
	if hello.Version != wire.ProtocolVersion {
		_ = conn.SendClose(wire.CloseVersion)
		return "", fmt.Errorf("%w: screen speaks %d", ErrVersionMismatch, hello.Version)
	}
	if len(hello.Nonce) != wire.NonceSize {
		_ = conn.SendClose(wire.CloseProtocol)
		return "", fmt.Errorf("%w: bad nonce length %d", ErrHandshake, len(hello.Nonce))
	}

	serverNonce, err := newNonce()
	if err != nil {
		return "", err
	}

	ch := &wire.Challenge{
		Version:      wire.ProtocolVersion,
		Name:         name,
		Nonce:        serverNonce,
		AuthRequired: len(secret) > 0,
	}

	var key []byte
	if ch.AuthRequired {
		if key, err = deriveKey(secret, hello.Nonce, serverNonce); err != nil {
			return "", err
		}
		ch.Proof = computeProof(key, labelServer, hello.Nonce, serverNonce)
	}

	if err := conn.SendMessage(ch); err != nil {
		return "", fmt.Errorf("%w: %v", ErrHandshake, err)
	}

	proof, err := receive[*wire.Proof](conn, timeout)
	if err != nil {
		return "", err
	}
	if ch.AuthRequired && !hmac.Equal(proof.Proof, computeProof(key, labelClient, hello.Nonce, serverNonce)) {
		_ = conn.SendClose(wire.CloseAuthFailed)
		return "", fmt.Errorf("%w: screen proof mismatch", ErrAuthFailed)
	}
	return hello.Name, nil
}
