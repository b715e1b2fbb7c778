package dgp

import (
	"crypto/sha256"
	"encoding/binary"
	"fmt"
	"math/rand/v2"

	"causalpanel/domain/core"
)

// Role names one semantic source of randomness. Every draw in the process
// belongs to exactly one role.
type Role string

const (
	RoleTraits    Role = "traits"
	RoleConfNoise Role = "conf_noise"
	RoleEditNoise Role = "edit_noise"
	RoleVolume    Role = "volume"
	RoleRetention Role = "retention"
)

var knownRoles = map[Role]bool{
	RoleTraits:    true,
	RoleConfNoise: true,
	RoleEditNoise: true,
	RoleVolume:    true,
	RoleRetention: true,
}

// Streams derives independent, reproducible sub-generators from one
// top-level seed. The registry of allowed roles is fixed at construction
// and read-only afterwards.
type Streams struct {
	seed     int64
	registry map[Role]bool
}

// NewStreams builds the sub-stream registry for a run. Unknown roles are a
// configuration error, fatal at startup.
func NewStreams(seed int64, roles ...Role) (*Streams, error) {
	if len(roles) == 0 {
		return nil, fmt.Errorf("%w: registry cannot be empty", core.ErrUnknownStreamRole)
	}
	registry := make(map[Role]bool, len(roles))
	for _, role := range roles {
		if !knownRoles[role] {
			return nil, fmt.Errorf("%w: %q", core.ErrUnknownStreamRole, role)
		}
		registry[role] = true
	}
	return &Streams{seed: seed, registry: registry}, nil
}

// Substream returns the random source dedicated to (role, indices...). The
// call is pure: the same key always yields a source in the same state, no
// matter how many other sub-streams were consumed before. Keys are hashed,
// so draws for one key never shift when a different key's draws are added
// or removed.
func (s *Streams) Substream(role Role, indices ...int) (rand.Source, error) {
	if !s.registry[role] {
		return nil, fmt.Errorf("%w: %q", core.ErrUnknownStreamRole, role)
	}

	h := sha256.New()
	var buf [8]byte
	binary.BigEndian.PutUint64(buf[:], uint64(s.seed))
	h.Write(buf[:])
	h.Write([]byte(role))
	for _, idx := range indices {
		binary.BigEndian.PutUint64(buf[:], uint64(int64(idx)))
		h.Write(buf[:])
	}
	sum := h.Sum(nil)

	hi := binary.BigEndian.Uint64(sum[0:8])
	lo := binary.BigEndian.Uint64(sum[8:16])
	return rand.NewPCG(hi, lo), nil
}
