package analysis

import (
	"github.com/wdavie/mlipts"
)

// Error is the concrete error type for dataset analysis. It fulfills
// mlipts.Error.
type Error struct {
	message string
	extra   string
	deco    []string
}

func (err Error) Error() string {
	s := "analysis: " + err.message
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
