package main

import "github.com/keshangamage/Moodmate/cmd/moodmate"

func main() {
	moodmate.Execute()
}
