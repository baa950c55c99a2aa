package main

// Version is the current oscmix version. Set at build time via -ldflags.
var Version = "0.1.0-dev"
