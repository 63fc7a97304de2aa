package repository

import "context"

type ctxKey string

const tokenKey ctxKey = "bearer_token"

// UIから預かったアクセストークンをcontext経由でリモート呼び出しへ渡す。

func WithToken(ctx context.Context, token string) context.Context {
	return context.WithValue(ctx, tokenKey, token)
}

func TokenFromContext(ctx context.Context) (string, bool) {
	v := ctx.Value(tokenKey)
	if v == nil {
		return "", false
	}

	t, ok := v.(string)
	if !ok || t == "" {
		return "", false
	}

	return t, true
}
