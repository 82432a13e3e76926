// Package geom provides the small amount of 3D math partkit needs: vectors,
// rigid part transforms and ray/plane intersection. Matrix work is delegated
// to the sdfx CAD library so transforms compose the same way the geometry
// kernel's do.
package geom
