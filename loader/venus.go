package loader

// VenusOrigin is the registry key of the built-in venus core schema.  It is
// implicitly required by every compilation.
const VenusOrigin = "builtin:venus"

// venusSource is the built-in venus core schema.  It carries the base
// properties every schema set can rely on; the compiler treats it like any
// other top schema.
const venusSource = `# The venus core schema. Compiled into the yasdl tool.
schema venus {
    guid "e1b7310a-venus-core-schema-000000000001";
    language "en";
    displaylabel "Venus core";
}
`
