package prompt

import (
	"fmt"
	"strings"

	"fourcut-ai/internal/shots"
)

// Compose builds the full generation prompt for one scene. Pure text
// assembly: no side effects, no error paths.
func Compose(scene shots.Scene, c Character, exact bool, numRefs int) string {
	var b strings.Builder

	if c.Key == "joker" {
		b.WriteString("Create a single photorealistic candid smartphone photo of THREE people standing together.\n")
	} else {
		b.WriteString("Create a single photorealistic candid smartphone photo of two people.\n")
	}

	b.WriteString(refInstruction(numRefs))
	b.WriteString(" ")
	b.WriteString(identityBlock)

	if c.Key == "joker" {
		b.WriteString(jokerCastBlock)
	} else {
		phrase := c.ExactPhrase
		if !exact {
			phrase = c.LookalikePhrase
		}
		fmt.Fprintf(&b, "PERSON B: %s.\n", phrase)
	}

	fmt.Fprintf(&b, "Scene: %s.\n", scene.Description)

	if c.Key == "joker" {
		b.WriteString("Camera: Natural smartphone photo style, ~35mm equivalent, realistic lighting & shadows, proper hand/finger anatomy. " +
			"All three people should look natural and friendly despite the Jokers' makeup.\n")
	} else {
		b.WriteString("Camera: Natural smartphone photo style, ~35mm equivalent, realistic lighting & shadows, proper hand/finger anatomy, " +
			"casual appropriate outfits for the scene. Both people should look natural and candid.\n")
	}

	b.WriteString("ABSOLUTELY NO text overlays, timestamps, location names, or any written elements in the image. " +
		"No borders. Only one image in the result.")

	return b.String()
}

func refInstruction(numRefs int) string {
	switch numRefs {
	case 1:
		return "PERSON A (center): The same individual shown in the uploaded reference selfie."
	case 2:
		return "PERSON A (center): The same individual shown in BOTH uploaded reference selfies."
	case 3:
		return "PERSON A (center): The same individual shown in ALL THREE uploaded reference selfies."
	default:
		return fmt.Sprintf("PERSON A (center): The same individual shown in ALL %d uploaded reference selfies.", numRefs)
	}
}

const identityBlock = "ULTRA-STRICT IDENTITY PRESERVATION: Keep PERSON A's face identity ABSOLUTELY IDENTICAL to the reference photo(s). " +
	"If only one reference photo is provided, maintain the EXACT same face, head pose, gaze direction, facial expression, " +
	"hair style, skin tone, and all facial features WITHOUT ANY MODIFICATIONS. Do not change anything about the person's appearance. " +
	"If multiple references are provided, analyze ALL images comprehensively to extract the MOST CONSISTENT features. " +
	"CRITICAL EYE PRESERVATION: Pay special attention to eye shape, eye color, eyelid structure, eyebrow shape and thickness, " +
	"eye spacing, and gaze direction. Eyes must be IDENTICAL to the reference photo(s). " +
	"Maintain EXACT facial features, bone structure, nose shape, mouth shape, jawline, and any distinctive characteristics. " +
	"For clothing: Keep the same style, colors, and type of clothing shown in the reference photo(s). " +
	"Do NOT change the outfit unless absolutely necessary for the scene context.\n"

const jokerCastBlock = "PERSON B (left): Joaquin Phoenix as Joker from the 2019 movie - distinctive red suit, green hair, white face paint with red smile, " +
	"thin build, intense eyes, standing on the left side.\n" +
	"PERSON C (right): Heath Ledger as Joker from The Dark Knight - purple suit, messy green hair, white face paint with black around eyes " +
	"and red Glasgow smile scars, standing on the right side.\n" +
	"POSE: All three people are standing close together with arms around each other's shoulders in a warm, friendly group pose. " +
	"PERSON A is in the CENTER between the two Jokers, with one arm around each Joker's shoulder. " +
	"The two Jokers also have their arms around PERSON A's shoulders, creating a tight group embrace.\n"
