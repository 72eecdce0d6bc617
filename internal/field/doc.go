// Package field implements the ambient particle field.
//
// A [Field] owns a bounded pool of [Particle] values and advances them one
// tick at a time:
//
//   - velocity is damped and nudged toward the shared force vector
//   - position integrates velocity, life integrates the decay rate
//   - expired or far out-of-bounds particles are compacted away
//   - the population is refilled up to a floor with ambient particles
//   - survivors are painted onto an attached [Surface]
//
// Ambient and burst particles share one pool and one step algorithm; the
// difference lives entirely in the [SpawnRule] used to create them.
//
// # Example
//
//	f := field.New(field.DefaultParams(), rand.New(rand.NewSource(1)))
//	f.Initialize(1280, 720, 100)
//	f.Attach(raster.New(1280, 720, bg))
//	f.SetForce(0.1, -0.05)
//	f.Step()
//
// # Thread Safety
//
// A Field is owned by a single goroutine. Step may fan the kinematics pass
// out over several workers, but it joins them before returning.
package field
