// Command doctran translates documents between languages using LLM
// providers, with resumable checkpoints and cost controls.
package main

func main() {
	execute()
}
