package shots

// Fixed four-shot lists. Static configuration, never user input.

func BillGatesScenes() []Scene {
	return []Scene{
		{
			Label:       "Gyeongbokgung Palace",
			Description: "at Gyeongbokgung Palace (Geunjeongjeon), early morning soft light, traditional palace architecture in background",
		},
		{
			Label:       "Myeongdong cafe",
			Description: "at a trendy cafe in Myeongdong street, casual friendly atmosphere, standing close together with arms around each other's shoulders in a warm friendly pose",
		},
		{
			Label:       "Hangang Park bench",
			Description: "at Hangang Park on a bench, afternoon golden hour lighting, relaxed casual setting with Seoul skyline in background",
		},
		{
			Label:       "N Seoul Tower",
			Description: "at N Seoul Tower observatory, sunset skyline view of Seoul",
		},
	}
}

func JokerScenes() []Scene {
	return []Scene{
		{
			Label:       "Gotham street",
			Description: "on a Gotham City street at night, dramatic urban lighting, dark atmospheric setting",
		},
		{
			Label:       "Old arcade",
			Description: "in an old arcade, neon lights and vintage game machines in background, moody atmosphere",
		},
		{
			Label:       "Theater stairs",
			Description: "on iconic concrete stairs, dramatic lighting, urban decay background",
		},
		{
			Label:       "Wayne Theater",
			Description: "in front of Wayne Theater, classic Gotham architecture, evening atmosphere",
		},
	}
}
