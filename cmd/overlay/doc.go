// Command overlay runs the overlay engine headless against a scene file.
//
// A scene is a TOML or JSON document describing the model, its placement,
// the animation clock, the camera and the container size. Subcommands
// project the bounding box, step the frame loop against a simulated video,
// replay drag gestures and print a starter scene.
package main
