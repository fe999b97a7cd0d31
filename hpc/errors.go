package hpc

import (
	"fmt"

	"github.com/wdavie/mlipts"
)

// Error is the concrete error type for scheduler operations. It fulfills
// mlipts.Error and mlipts.CalcError.
type Error struct {
	message  string
	code     string //one of the mlipts.Err* codes
	path     string //the script or directory involved, or empty
	extra    string
	deco     []string
	critical bool
}

func (err Error) Error() string {
	s := fmt.Sprintf("hpc %s: %s", err.path, err.message)
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

func (err Error) Critical() bool { return err.critical }

func (err Error) Path() string { return err.path }

func (err Error) Code() string { return err.code }

func errDecorate(err error, caller string) error {
	err2 := err.(mlipts.Error)
	err2.Decorate(caller)
	return err2
}
