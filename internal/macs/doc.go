// Package macs computes Maxwellian-averaged cross sections (MACS) from a
// cross-section curve.
//
// # Accuracy
//
// The cross section is only known on the sampled energy range, so the
// numerator integral runs over [E_min, E_max] instead of [0, ∞). This is the
// dominant systematic approximation. Its size is reported per temperature as
// Result.Coverage, the closed-form fraction of the Maxwellian weight that lies
// inside the domain; low coverage is logged and, below Options.MinCoverage,
// rejected.
//
// Within the domain the integrand is sampled at least NodesPerScale times per
// kT and integrated with composite Simpson's rule on every sample interval.
// Steps coarser than kT/MinNodesPerScale are flagged in the result.
//
// # Reduced mass
//
// Tabulated energies are laboratory energies. With a target mass number A the
// Maxwellian is evaluated at kT·(1+A)/A, which is the laboratory form
// 2a²/(√π (kT)²) ∫σ(E)·E·exp(-aE/kT) dE with a = A/(1+A).
package macs
