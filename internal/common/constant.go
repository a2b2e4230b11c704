package common

// UnlockTokenHeaderName is the gRPC metadata key carrying an unlock token
// on content requests.
const UnlockTokenHeaderName = "unlock_token"

// RetryMessage is shown to the reader after a wrong secret.
const RetryMessage = "incorrect password, please try again"
