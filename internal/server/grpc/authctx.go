package grpcserver

import (
	"context"
	"errors"
	"strings"

	"github.com/gofrs/uuid/v5"
	"google.golang.org/grpc/metadata"

	"github.com/and161185/stockkeeper/internal/service"
)

type ctxKey string

const principalKey ctxKey = "sk.principal"

// Principal is the verified caller.
type Principal struct {
	UserID uuid.UUID
	Email  string
}

// WithPrincipal stores the authenticated caller in context.
func WithPrincipal(ctx context.Context, p Principal) context.Context {
	return context.WithValue(ctx, principalKey, p)
}

// PrincipalFromCtx fetches the caller stored by the auth interceptors.
func PrincipalFromCtx(ctx context.Context) (Principal, bool) {
	p, ok := ctx.Value(principalKey).(Principal)
	return p, ok && p.UserID != uuid.Nil
}

// authenticate extracts "authorization: Bearer <JWT>" and verifies it.
func authenticate(ctx context.Context, key []byte) (Principal, error) {
	tok, err := bearerTokenFromMD(ctx)
	if err != nil {
		return Principal{}, err
	}
	c, err := service.ParseToken(tok, key)
	if err != nil {
		return Principal{}, err
	}
	id, err := uuid.FromString(c.Subject)
	if err != nil {
		return Principal{}, errors.New("bad subject")
	}
	return Principal{UserID: id, Email: c.Email}, nil
}

func bearerTokenFromMD(ctx context.Context) (string, error) {
	md, ok := metadata.FromIncomingContext(ctx)
	if !ok {
		return "", errors.New("no metadata")
	}
	for _, v := range md.Get("authorization") {
		v = strings.TrimSpace(v)
		if len(v) >= 7 && strings.EqualFold(v[:7], "bearer ") {
			if t := strings.TrimSpace(v[7:]); t != "" {
				return t, nil
			}
		}
	}
	return "", errors.New("no bearer token")
}
