package modulation

// Names lists the mode operations in catalog order.
var Names = []string{
	NameAssociative,
	NamePatternRecognition,
	NameSynesthesia,
	NameBoundaryDissolution,
	NameRecursiveElaboration,
	NameDivergentThinking,
	NamePerspectiveShift,
	NameMetaphoricalLanguage,
}
