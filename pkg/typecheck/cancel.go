package typecheck

import "github.com/pkg/errors"

// ErrCancelled is returned by Catch when inference was interrupted by a
// concurrent change to its inputs. It is an operational signal, not a user
// error: dispatchers respond to it by retrying against a fresh snapshot.
var ErrCancelled = errors.New("type inference cancelled")

// cancelled is the panic payload used to unwind the recursive inference
// calls. The algorithm has no natural suspension points, so unwinding is
// the only way to interrupt it mid-recursion.
type cancelled struct{}

// ThrowCancelled raises the cancellation signal. It is called by InferExpr
// when the cancel flag is set, and by snapshot databases whose inputs went
// stale under an in-flight read.
func ThrowCancelled() {
	panic(cancelled{})
}

// Catch runs f and recovers the cancellation signal, returning
// ErrCancelled in its place. It is the single catch point: every inference
// session must be entered through it. Any other panic is a genuine defect
// and is re-raised.
func Catch(f func()) (err error) {
	defer func() {
		if p := recover(); p != nil {
			if _, ok := p.(cancelled); ok {
				err = ErrCancelled
				return
			}
			panic(p)
		}
	}()
	f()
	return nil
}
