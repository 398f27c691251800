// Package fdpoll waits for read readiness on raw file descriptors.
package fdpoll

import (
	"errors"
	"fmt"
	"time"

	"golang.org/x/sys/unix"
)

// poll is replaced in tests to simulate interrupted system calls.
var poll = unix.Poll

// Forever blocks Wait until at least one descriptor is ready.
const Forever time.Duration = -1

type Readiness struct {
	FD       uintptr
	Readable bool
	HangUp   bool
	Invalid  bool
}

// Ready reports whether a read on the descriptor will not block. A hang-up
// counts: the read returns end-of-stream.
func (r Readiness) Ready() bool {
	return r.Readable || r.HangUp
}

// Wait polls fds for input. The result has one entry per fd, in order.
func Wait(fds []uintptr, timeout time.Duration) ([]Readiness, error) {
	pollFds := make([]unix.PollFd, len(fds))
	for i, fd := range fds {
		pollFds[i] = unix.PollFd{Fd: int32(fd), Events: unix.POLLIN | unix.POLLPRI}
	}

	deadline := time.Now().Add(timeout)
	wait := timeout
	for {
		_, err := poll(pollFds, timeoutMillis(wait))
		if errors.Is(err, unix.EINTR) {
			// Interrupted polls resume with what is left of the original budget.
			if timeout >= 0 {
				wait = max(time.Until(deadline), 0)
			}
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("poll: %w", err)
		}
		break
	}

	result := make([]Readiness, len(fds))
	for i, pfd := range pollFds {
		result[i] = Readiness{
			FD:       fds[i],
			Readable: pfd.Revents&(unix.POLLIN|unix.POLLPRI) != 0,
			HangUp:   pfd.Revents&(unix.POLLHUP|unix.POLLERR) != 0,
			Invalid:  pfd.Revents&unix.POLLNVAL != 0,
		}
	}

	return result, nil
}

// WaitOne reports whether fd became ready within timeout.
func WaitOne(fd uintptr, timeout time.Duration) (bool, error) {
	result, err := Wait([]uintptr{fd}, timeout)
	if err != nil {
		return false, err
	}
	if result[0].Invalid {
		return false, fmt.Errorf("poll: descriptor %d is not open", fd)
	}

	return result[0].Ready(), nil
}

func timeoutMillis(timeout time.Duration) int {
	if timeout < 0 {
		return -1
	}
	return int(timeout / time.Millisecond)
}
