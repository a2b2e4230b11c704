package gate

import (
	"github.com/dmitrijs2005/passgate/internal/common"
)

type Reason string

const (
	ReasonNone           Reason = ""
	ReasonSecretMismatch Reason = "SECRET_MISMATCH"
	ReasonRateLimited    Reason = "RATE_LIMITED"
)

type Decision struct {
	Allowed bool
	Reason  Reason
}

func Allow() Decision {
	return Decision{Allowed: true}
}

func Deny(reason Reason) Decision {
	return Decision{Reason: reason}
}

// Check compares candidate with the secret guarding res. It returns
// common.ErrorNotGated when res does not require a password or has no
// secret configured; callers are expected to skip gating in that case.
//
// The comparison is exact: no trimming, no case folding.
func Check(res Resource, candidate []byte) (Decision, error) {
	if !res.Gated() {
		return Decision{}, common.ErrorNotGated
	}
	if res.Expected.Matches(candidate) {
		return Allow(), nil
	}
	return Deny(ReasonSecretMismatch), nil
}
