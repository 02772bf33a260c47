// Package ik solves the inverse kinematics of a 6-axis revolute arm by
// damped least squares (Levenberg–Marquardt style) iteration over a
// finite-difference Jacobian.
//
// A solve is a pure function of its inputs: target pose, seed configuration,
// chain geometry, and axis mask. The solver clones the chain it is given, so
// the caller's chain is never perturbed, and identical inputs always produce
// identical output (no randomized restarts; the damping factor adapts
// multiplicatively, accepting only residual-reducing steps). Per solve the state machine is
// seeded -> iterating -> converged | failed(reason); nothing survives
// between calls.
//
// Position errors are in millimeters and orientation errors in degrees;
// the two are made commensurate by an explicit orientation weight rather
// than implicitly mixing units.
//
// Two solves must not run concurrently against shared trace storage, but
// the solver itself is reentrant: each call works on private copies.
package ik
