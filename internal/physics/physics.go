// Package physics implements the reproducible three-body gravitational
// integrator used purely as a chaotic entropy-mixing function — not as a
// physically accurate simulation. The integrator's only hard requirement is
// bit-exact reproducibility: given the same Configuration, duration, and
// timestep, Simulate must return byte-identical results on any platform
// running strict IEEE-754 double-precision arithmetic.
//
// To hold that contract this file never uses math.FMA, never reorders a
// floating-point sum, and serializes the final state through exactly one
// documented format (Canonicalize). Changing the order of any accumulation
// below changes the digest.
package physics

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
	"fmt"
	"math"
	"strings"

	domainphysics "github.com/slotmachine/fairness-engine/domain/physics"
)

// state is the flattened ODE state vector: for body i, indices
// [i*6+0 .. i*6+2] are position (x,y,z) and [i*6+3 .. i*6+5] are velocity
// (vx,vy,vz).
type state [18]float64

// Simulate runs steps = floor(duration/timestep) fixed RK4 steps over the
// coupled Newtonian three-body ODEs with pairwise force
// F_ij = G·m_j·r_ij / (|r_ij|² + ε²)^(3/2), and returns the final state.
//
// The step count is fixed for given inputs and never adapts — this is what
// makes the digest of the result reproducible across implementations.
func Simulate(cfg domainphysics.Configuration, duration, timestep float64) domainphysics.FinalState {
	steps := int(math.Floor(duration / timestep))

	masses := [3]float64{cfg.Bodies[0].Mass, cfg.Bodies[1].Mass, cfg.Bodies[2].Mass}
	s := toState(cfg.Bodies)

	e0 := totalEnergy(s, masses, cfg.G, cfg.Softening)

	for i := 0; i < steps; i++ {
		s = rk4Step(s, masses, cfg.G, cfg.Softening, timestep)
	}

	e1 := totalEnergy(s, masses, cfg.G, cfg.Softening)

	var drift float64
	if e0 != 0 {
		drift = math.Abs((e1 - e0) / e0)
	} else {
		drift = math.Abs(e1 - e0)
	}

	return domainphysics.FinalState{
		Bodies:      fromState(s, masses),
		EnergyDrift: drift,
	}
}

func toState(bodies [3]domainphysics.Body) state {
	var s state
	for i, b := range bodies {
		s[i*6+0] = b.Position.X
		s[i*6+1] = b.Position.Y
		s[i*6+2] = b.Position.Z
		s[i*6+3] = b.Velocity.X
		s[i*6+4] = b.Velocity.Y
		s[i*6+5] = b.Velocity.Z
	}
	return s
}

func fromState(s state, masses [3]float64) [3]domainphysics.Body {
	var bodies [3]domainphysics.Body
	for i := range bodies {
		bodies[i] = domainphysics.Body{
			Mass:     masses[i],
			Position: domainphysics.Vector3{X: s[i*6+0], Y: s[i*6+1], Z: s[i*6+2]},
			Velocity: domainphysics.Vector3{X: s[i*6+3], Y: s[i*6+4], Z: s[i*6+5]},
		}
	}
	return bodies
}

// derivative evaluates the ODE right-hand side: position derivative is
// velocity, velocity derivative is the sum of pairwise gravitational
// accelerations. The inner sum always accumulates in ascending j order.
func derivative(s state, masses [3]float64, g, softening float64) state {
	var d state

	for i := 0; i < 3; i++ {
		d[i*6+0] = s[i*6+3]
		d[i*6+1] = s[i*6+4]
		d[i*6+2] = s[i*6+5]
	}

	for i := 0; i < 3; i++ {
		var ax, ay, az float64
		for j := 0; j < 3; j++ {
			if j == i {
				continue
			}
			dx := s[j*6+0] - s[i*6+0]
			dy := s[j*6+1] - s[i*6+1]
			dz := s[j*6+2] - s[i*6+2]
			r2 := dx*dx + dy*dy + dz*dz + softening*softening
			invR3 := 1.0 / math.Pow(r2, 1.5)
			f := g * masses[j] * invR3
			ax += f * dx
			ay += f * dy
			az += f * dz
		}
		d[i*6+3] = ax
		d[i*6+4] = ay
		d[i*6+5] = az
	}

	return d
}

func addScaled(s, k state, scale float64) state {
	var out state
	for i := range out {
		out[i] = s[i] + k[i]*scale
	}
	return out
}

func rk4Step(s state, masses [3]float64, g, softening, h float64) state {
	k1 := derivative(s, masses, g, softening)
	k2 := derivative(addScaled(s, k1, h/2), masses, g, softening)
	k3 := derivative(addScaled(s, k2, h/2), masses, g, softening)
	k4 := derivative(addScaled(s, k3, h), masses, g, softening)

	var out state
	for i := range out {
		out[i] = s[i] + (h/6.0)*(k1[i]+2*k2[i]+2*k3[i]+k4[i])
	}
	return out
}

func totalEnergy(s state, masses [3]float64, g, softening float64) float64 {
	var ke float64
	for i := 0; i < 3; i++ {
		vx, vy, vz := s[i*6+3], s[i*6+4], s[i*6+5]
		ke += 0.5 * masses[i] * (vx*vx + vy*vy + vz*vz)
	}

	var pe float64
	for i := 0; i < 3; i++ {
		for j := i + 1; j < 3; j++ {
			dx := s[j*6+0] - s[i*6+0]
			dy := s[j*6+1] - s[i*6+1]
			dz := s[j*6+2] - s[i*6+2]
			r := math.Sqrt(dx*dx + dy*dy + dz*dz + softening*softening)
			pe -= g * masses[i] * masses[j] / r
		}
	}

	return ke + pe
}

// Canonicalize serializes a FinalState into the single documented format
// the digest hashes: for each body in order, "x:y:z:vx:vy:vz" with each
// component rendered as a 15-significant-digit signed-exponent decimal
// (%.14e — one leading digit, 14 fractional digits, signed two-digit-minimum
// exponent), all six components per body and all three bodies joined by ":".
func Canonicalize(fs domainphysics.FinalState) string {
	parts := make([]string, 0, 18)
	for _, b := range fs.Bodies {
		parts = append(parts,
			canonicalFloat(b.Position.X), canonicalFloat(b.Position.Y), canonicalFloat(b.Position.Z),
			canonicalFloat(b.Velocity.X), canonicalFloat(b.Velocity.Y), canonicalFloat(b.Velocity.Z),
		)
	}
	return strings.Join(parts, ":")
}

func canonicalFloat(f float64) string {
	return fmt.Sprintf("%.14e", f)
}

// Digest hashes the canonical serialization of fs together with
// simulationID, a 16-hex tag identifying the run. simulationID is part of
// the published entropy record and must be replayed literally by a verifier
// re-deriving this digest — it is not itself secret.
func Digest(fs domainphysics.FinalState, simulationID string) [32]byte {
	canonical := Canonicalize(fs)
	return sha256.Sum256([]byte(canonical + ":" + simulationID))
}

// NewSimulationID generates a fresh 16-hex-character simulation tag from a
// cryptographic source.
func NewSimulationID() (string, error) {
	buf := make([]byte, 8)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("physics: failed to generate simulation id: %w", err)
	}
	return hex.EncodeToString(buf), nil
}

// RandomConfiguration draws a fresh three-body Configuration from a
// cryptographic source: masses, positions, and velocities spread over
// ranges chosen only to keep the integrator numerically well-behaved
// (bodies clear of the softening radius, velocities bounded), never to
// model any particular real system (§1 Non-goals, §9 "it is not essential
// that the chaos come from gravity"). This is the unpredictable base seed
// the physics-backed house-seed minting strategy simulates forward.
func RandomConfiguration() (domainphysics.Configuration, error) {
	cfg := domainphysics.Configuration{G: 1.0, Softening: 0.01}
	for i := range cfg.Bodies {
		mass, err := randomFloat(0.5, 5.0)
		if err != nil {
			return domainphysics.Configuration{}, err
		}
		px, err := randomFloat(-10, 10)
		if err != nil {
			return domainphysics.Configuration{}, err
		}
		py, err := randomFloat(-10, 10)
		if err != nil {
			return domainphysics.Configuration{}, err
		}
		pz, err := randomFloat(-10, 10)
		if err != nil {
			return domainphysics.Configuration{}, err
		}
		vx, err := randomFloat(-1, 1)
		if err != nil {
			return domainphysics.Configuration{}, err
		}
		vy, err := randomFloat(-1, 1)
		if err != nil {
			return domainphysics.Configuration{}, err
		}
		vz, err := randomFloat(-1, 1)
		if err != nil {
			return domainphysics.Configuration{}, err
		}
		cfg.Bodies[i] = domainphysics.Body{
			Mass:     mass,
			Position: domainphysics.Vector3{X: px, Y: py, Z: pz},
			Velocity: domainphysics.Vector3{X: vx, Y: vy, Z: vz},
		}
	}
	return cfg, nil
}

// randomFloat draws a cryptographically random float64 uniform on [lo, hi).
func randomFloat(lo, hi float64) (float64, error) {
	var buf [8]byte
	if _, err := rand.Read(buf[:]); err != nil {
		return 0, fmt.Errorf("physics: failed to draw random float: %w", err)
	}
	u := binary.BigEndian.Uint64(buf[:])
	frac := float64(u>>11) / (1 << 53) // 53 bits of entropy, uniform on [0,1)
	return lo + frac*(hi-lo), nil
}

// ThetaVectorFromDigest derives the three Theta Vector angles (§3) from
// three disjoint 4-byte big-endian words at the start of digest, each
// interpreted as a uniform fraction of 2π.
func ThetaVectorFromDigest(digest [32]byte) [3]float64 {
	var theta [3]float64
	for i := 0; i < 3; i++ {
		word := binary.BigEndian.Uint32(digest[i*4 : i*4+4])
		theta[i] = (float64(word) / 4294967296.0) * 2 * math.Pi
	}
	return theta
}
