package expr

import "github.com/google/uuid"

func newUUIDString() string {
	return uuid.NewString()
}
