// Package assembly defines the part graph that rescaling and grouped
// dispatch operate on.
//
// An Assembly is an arena of parts addressed by PartID. Each part has at
// most one parent; parent links and attach-node neighbor links are stored as
// IDs, never as owning pointers, so the graph can be rewired freely between
// calls. Part positions are independent world-space state: moving a part
// does not move its children.
package assembly
