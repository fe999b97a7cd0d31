package dataset

import (
	"errors"
	"fmt"

	"github.com/wdavie/mlipts"
)

// Error is the concrete error type for training-set operations. It fulfills
// mlipts.Error.
type Error struct {
	message string
	path    string //the training set or calculation involved, or empty
	extra   string
	deco    []string
}

func (err Error) Error() string {
	s := fmt.Sprintf("dataset %s: %s", err.path, err.message)
	if err.extra != "" {
		s = s + ": " + err.extra
	}
	return s
}

// Decorate adds new information to the error
func (err Error) Decorate(deco string) []string {
	//Even though this method does not use a pointer as a receiver, and tries to alter the receiver,
	//it should work, since err.deco is a slice, and hence a pointer itself.
	if deco != "" {
		err.deco = append(err.deco, deco)
	}
	return err.deco
}

func errDecorate(err error, caller string) error {
	err2 := err.(mlipts.Error)
	err2.Decorate(caller)
	return err2
}

// reason reduces an error to the stable code skip reports carry, falling
// back to the full text for errors without one.
func reason(err error) string {
	var cerr mlipts.CalcError
	if errors.As(err, &cerr) {
		return cerr.Code()
	}
	return err.Error()
}
