// Package external implementa el transporte HTTP hacia los sistemas externos
// en los que se registran los usuarios de las empresas.
package external

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/rs/zerolog"
	"golang.org/x/time/rate"

	"github.com/jhoicas/crm-portal-api/internal/application/access"
	pkgjwt "github.com/jhoicas/crm-portal-api/pkg/jwt"
)

// Options parámetros comunes de un cliente de proveedor.
type Options struct {
	Timeout       time.Duration
	RatePerSecond float64 // <= 0 sin límite
	Role          string  // rol fijo con el que se registran los usuarios
}

// transport clientes resty de un proveedor, con limitador de salida compartido.
// http reintenta ante fallos de transporte (logins); once nunca reintenta, porque un
// POST de alta que el proveedor ya procesó crearía la cuenta dos veces.
type transport struct {
	http    *resty.Client
	once    *resty.Client
	limiter *rate.Limiter
	log     zerolog.Logger
}

// restyLogger envía los avisos de resty a zerolog.
type restyLogger struct {
	log zerolog.Logger
}

func (l restyLogger) Errorf(format string, v ...any) { l.log.Error().Msgf(format, v...) }
func (l restyLogger) Warnf(format string, v ...any)  { l.log.Warn().Msgf(format, v...) }
func (l restyLogger) Debugf(format string, v ...any) { l.log.Debug().Msgf(format, v...) }

func newRestyClient(timeout time.Duration, log zerolog.Logger) *resty.Client {
	return resty.New().
		SetTimeout(timeout).
		SetLogger(restyLogger{log: log}).
		SetHeader("Content-Type", "application/json").
		SetHeader("Accept", "application/json")
}

func newTransport(opts Options, log zerolog.Logger) *transport {
	if opts.Timeout <= 0 {
		opts.Timeout = 30 * time.Second
	}
	limit := rate.Inf
	if opts.RatePerSecond > 0 {
		limit = rate.Limit(opts.RatePerSecond)
	}
	retrying := newRestyClient(opts.Timeout, log).
		SetRetryCount(2).
		SetRetryWaitTime(500 * time.Millisecond).
		SetRetryMaxWaitTime(3 * time.Second)
	return &transport{
		http:    retrying,
		once:    newRestyClient(opts.Timeout, log).SetRetryCount(0),
		limiter: rate.NewLimiter(limit, 1),
		log:     log,
	}
}

// post envía una llamada idempotente (login) con reintentos.
func (t *transport) post(ctx context.Context, url, bearer string, body any) (decoded, error) {
	return t.send(ctx, t.http, url, bearer, body)
}

// postOnce envía un alta: un único intento.
func (t *transport) postOnce(ctx context.Context, url, bearer string, body any) (decoded, error) {
	return t.send(ctx, t.once, url, bearer, body)
}

// send respeta el limitador. Devuelve el cuerpo decodificado o un
// *access.ExternalError cuando el proveedor responde fuera de 2xx.
func (t *transport) send(ctx context.Context, client *resty.Client, url, bearer string, body any) (decoded, error) {
	if err := t.limiter.Wait(ctx); err != nil {
		return decoded{}, fmt.Errorf("limitador de salida: %w", err)
	}
	req := client.R().SetContext(ctx).SetBody(body)
	if bearer != "" {
		req.SetAuthToken(bearer)
	}
	start := time.Now()
	resp, err := req.Post(url)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return decoded{}, fmt.Errorf("sin respuesta de %s: %w", url, context.DeadlineExceeded)
		}
		return decoded{}, fmt.Errorf("llamada a %s: %w", url, err)
	}
	d := decode(resp.Body())
	t.log.Debug().
		Str("url", url).
		Int("status", resp.StatusCode()).
		Dur("elapsed", time.Since(start)).
		Msg("Respuesta de sistema externo")
	if resp.IsError() || resp.StatusCode() >= 300 {
		return d, d.failure(resp.StatusCode())
	}
	return d, nil
}

func joinURL(base, path string) string {
	return strings.TrimRight(base, "/") + path
}

// tokenExpiry lee exp del token del proveedor; cero si no es un JWT con exp.
func tokenExpiry(token string) *time.Time {
	exp, ok := pkgjwt.UnverifiedExpiry(token)
	if !ok {
		return nil
	}
	return &exp
}

func session(d decoded) *access.ExternalSession {
	tok := d.token()
	s := &access.ExternalSession{Token: tok, ExternalUserID: d.externalID()}
	if exp := tokenExpiry(tok); exp != nil {
		s.ExpiresAt = *exp
	}
	return s
}

// isAuthRejection distingue "credenciales rechazadas" de fallos de transporte o del servidor.
func isAuthRejection(err error) bool {
	var ext *access.ExternalError
	if !errors.As(err, &ext) {
		return false
	}
	return ext.StatusCode >= 400 && ext.StatusCode < 500
}
