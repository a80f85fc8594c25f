package util

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"math"
	"strings"

	"golang.org/x/exp/constraints"
)

// error

type Error struct {
	orig error
	msg  string
	code error
}

func (e *Error) Error() string {
	if e.orig != nil {
		return fmt.Sprintf("%s: %v", e.msg, e.orig)
	}

	return e.msg
}

func (e *Error) Unwrap() error {
	return e.orig
}

// Is reports whether target is the error code of e, so errors.Is(err, ErrNetworkLoad) matches
// errors wrapped with that code.
func (e *Error) Is(target error) bool {
	return e.code != nil && e.code == target
}

func WrapErrorf(orig error, code error, format string, a ...interface{}) error {
	return &Error{
		code: code,
		orig: orig,
		msg:  fmt.Sprintf(format, a...),
	}
}

func (e *Error) Code() error {
	return e.code
}

var (
	ErrInternalServerError = errors.New("internal Server Error")
	ErrNotFound            = errors.New("your requested Item is not found")
	ErrBadParamInput       = errors.New("given Param is not valid")

	ErrNetworkLoad    = errors.New("road network could not be loaded")
	ErrGeocodeFailure = errors.New("geocoding service failure")
	ErrEmptyGraph     = errors.New("graph has no vertices")
	ErrInvalidWeight  = errors.New("invalid edge weight")
	ErrEdgeNotFound   = errors.New("edge not found")
	ErrTimeout        = errors.New("path computation exceeded its time budget")
)

var MessageInternalServerError string = "internal server error"

func DegreeToRadians(angle float64) float64 {
	return angle * (math.Pi / 180.0)
}

func RadiansToDegree(rad float64) float64 {
	return 180.0 * rad / math.Pi
}

func ReverseG[T any](arr []T) []T {
	copyArr := make([]T, len(arr)) // should do on the copy )
	copy(copyArr, arr)
	for i, j := 0, len(copyArr)-1; i < j; i, j = i+1, j-1 {
		copyArr[i], copyArr[j] = copyArr[j], copyArr[i]
	}
	return copyArr
}

func StopConcurrentOperation(ctx context.Context) bool {
	select {
	case <-ctx.Done():
		return true
	default:
		return false
	}
}

func Max[T constraints.Ordered](a, b T) T {
	if a > b {
		return a
	}
	return b
}

// IsFinitePositive. true if x > 0 and x is neither NaN nor Inf
func IsFinitePositive[T constraints.Float](x T) bool {
	f := float64(x)
	return f > 0 && !math.IsInf(f, 0) && !math.IsNaN(f)
}

// IsFiniteNonNegative. true if x >= 0 and x is neither NaN nor Inf
func IsFiniteNonNegative[T constraints.Float](x T) bool {
	f := float64(x)
	return f >= 0 && !math.IsInf(f, 0) && !math.IsNaN(f)
}

// ReadLine reads one line without the trailing newline. A last line without newline is returned
// with a nil error, io.EOF is only returned once nothing is left.
func ReadLine(br *bufio.Reader) (string, error) {
	line, err := br.ReadString('\n')
	if err != nil {
		if errors.Is(err, io.EOF) && len(line) > 0 {
			return strings.TrimRight(line, "\r\n"), nil
		}
		return "", err
	}
	return strings.TrimRight(line, "\r\n"), nil
}
