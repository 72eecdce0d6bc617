// Package motion turns raw pointer samples into a speed, a speed band and
// an occasional narrative hint.
//
// [Classifier.Sample] is the only stateful, time-dependent entry point;
// [Classify] is a pure, total function over the speed scalar so the banding
// can be tested without simulating pointer events.
package motion
