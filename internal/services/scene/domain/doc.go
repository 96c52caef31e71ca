// Package domain models the host documents a scene is made of.
//
// Scenes, actors and token placements belong to the tabletop host: tools read
// them through the storage contracts and change them only with a Patch, the
// dotted-path partial update the host applies atomically to one token.
package domain
