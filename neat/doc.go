// Package neat implements NEAT-style neuroevolution of feed-forward networks.
//
// A Genome keeps its node and connection genes in dense arenas addressed by
// NodeIndex and ConnIndex, with stable NodeID/ConnID values that survive
// cloning and crossover. Layers and the evaluation order are derived from the
// connection graph and cached until the structure changes.
//
// A Population runs the generational loop: it evaluates genomes through a
// caller supplied FitnessFunc, keeps a stash of every all-time-best genome,
// and rotates the fitness Criterion through eras measured from the last
// improvement. Era boundaries raise the mutation pressure and can trigger a
// cataclysm or the resurrection of stashed genomes.
//
// Structural invariants are checked after every mutation and crossover unless
// the package is built with the neatrelease tag.
package neat
