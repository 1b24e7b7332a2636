// Package gateway decides, per request, whether speech is produced by the
// remote synthesis capability or simulated locally.
//
// A Gateway starts in ModeNormal. The first remote failure whose text
// contains one of the configured degrade tokens ("quota" and "billing" by
// default) switches it to ModeDegraded for the rest of its lifetime, and
// every request from then on is answered with a SimulatedSuccess without
// touching the remote capability. Matching on raw error text is a coarse
// heuristic: the hosted provider exposes no structured "quota exceeded"
// kind, so the tokens are configurable through Classifier.
//
// Construct one Gateway at process start and pass it to every caller that
// needs synthesis.
package gateway
