package external

import "github.com/jhoicas/crm-portal-api/internal/application/access"

func DecodeExternalID(raw []byte) *string { return decode(raw).externalID() }

func DecodeFailure(raw []byte, status int) *access.ExternalError {
	return decode(raw).failure(status)
}
