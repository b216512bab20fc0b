// Package code provides the vocabulary used to describe source code in the
// knowledge graph.
//
// Terms are referenced by local name. The concrete IRI of every term is
// resolved at run time through the configured ontology, so this package only
// fixes the names the graph writers ask for and the standard RDF terms that
// exist independently of any ontology.
//
// # Naming
//
// Class names follow the construct-kind tags produced by the parse adapter
// (ClassDefinition, FunctionDefinition, ...). Relation names are camelCase
// verbs and come in pairs where the ontology declares an inverse:
//
//	hasMethod        ↔ isMethodOf
//	hasCodePart      ↔ isCodePartOf
//	extendsType      ↔ isExtendedBy
//	implementsInterface ↔ isImplementedBy
//
// # Fallbacks
//
// Every lookup has a generic fallback so writers never fail on a missing
// term:
//
//	construct class  → CodeConstruct → rdfs:Resource
//	file class       → DigitalFile   → rdfs:Resource
//	content class    → InformationContentEntity → rdfs:Resource
//	object property  → relatedTo     → rdfs:seeAlso
//	datatype property                → rdfs:comment
package code
