package auth

import (
	"context"
	"errors"
	"sync"

	"golang.org/x/crypto/bcrypt"
)

// ErrHasherClosed is returned once the hasher's workers have been stopped.
var ErrHasherClosed = errors.New("password hasher is closed")

// PasswordHasher hashes and verifies passwords.
type PasswordHasher interface {
	// Hash returns the bcrypt hash of password.
	Hash(ctx context.Context, password string) (string, error)

	// Compare compares a hashed password with its possible plaintext equivalent.
	// Returns nil on success, or an error on failure (e.g., mismatch).
	Compare(ctx context.Context, hashedPassword, password string) error
}

// hashJob is one unit of bcrypt work. result is buffered so a worker never
// blocks on a caller that has given up.
type hashJob struct {
	run    func() (string, error)
	result chan hashResult
}

type hashResult struct {
	hash string
	err  error
}

// BcryptHasher runs bcrypt on a fixed pool of workers, bounding the CPU that
// concurrent registrations and logins can consume.
type BcryptHasher struct {
	cost int
	jobs chan hashJob

	quit      chan struct{}
	closeOnce sync.Once
	wg        sync.WaitGroup
}

var _ PasswordHasher = (*BcryptHasher)(nil)

// NewBcryptHasher starts workers goroutines hashing at the given bcrypt cost.
func NewBcryptHasher(workers, cost int) *BcryptHasher {
	if workers < 1 {
		workers = 1
	}
	if cost < bcrypt.MinCost {
		cost = bcrypt.DefaultCost
	}

	h := &BcryptHasher{
		cost: cost,
		jobs: make(chan hashJob),
		quit: make(chan struct{}),
	}
	for i := 0; i < workers; i++ {
		h.wg.Add(1)
		go h.worker()
	}
	return h
}

func (h *BcryptHasher) worker() {
	defer h.wg.Done()
	for {
		select {
		case <-h.quit:
			return
		case job := <-h.jobs:
			hash, err := job.run()
			job.result <- hashResult{hash: hash, err: err}
		}
	}
}

// Hash implements PasswordHasher.
func (h *BcryptHasher) Hash(ctx context.Context, password string) (string, error) {
	return h.submit(ctx, func() (string, error) {
		hash, err := bcrypt.GenerateFromPassword([]byte(password), h.cost)
		return string(hash), err
	})
}

// Compare implements PasswordHasher.
func (h *BcryptHasher) Compare(ctx context.Context, hashedPassword, password string) error {
	_, err := h.submit(ctx, func() (string, error) {
		return "", bcrypt.CompareHashAndPassword([]byte(hashedPassword), []byte(password))
	})
	return err
}

func (h *BcryptHasher) submit(ctx context.Context, run func() (string, error)) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	job := hashJob{run: run, result: make(chan hashResult, 1)}

	select {
	case h.jobs <- job:
	case <-h.quit:
		return "", ErrHasherClosed
	case <-ctx.Done():
		return "", ctx.Err()
	}

	select {
	case res := <-job.result:
		return res.hash, res.err
	case <-ctx.Done():
		return "", ctx.Err()
	}
}

// Close stops the workers after any in-flight job completes. It is safe to
// call more than once.
func (h *BcryptHasher) Close() {
	h.closeOnce.Do(func() { close(h.quit) })
	h.wg.Wait()
}
