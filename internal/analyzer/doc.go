// Package analyzer implements the two external analysis collaborators:
// the text intent/sentiment classifier and the vision defect verifier.
// Both speak the OpenAI chat-completions dialect against different
// endpoints and both decode loosely-shaped model JSON into typed
// verdicts. Failures surface as errors; the workflow stages translate
// them into conservative fallback verdicts.
package analyzer
