/*
Package schema defines the building blocks of the admin configuration document.

A route is an addressable resource shown in the admin UI. It is composed of
groups, and each group holds fields and, for repeaters, nested groups. Every
node is assembled with a persistent builder: each call returns a new value and
leaves the receiver untouched, so a half-built group can be shared and extended
in two directions without interference. Get returns the snapshot that is
serialized for the renderer.

# Building Routes

	route, err := schema.InitRoute("pages", schema.InSection("Content", "Pages"),
		schema.GenerateCrudEndpoints(check, "pages", "pages"), schema.RouteTypeCollection)
	if err != nil {
		return err
	}

	route = route.Icon("description").AddGroup(
		schema.LargeGroup("Details").AddField(
			schema.StringField("title", "Title").Required().List(1),
			schema.StringField("slug", "Slug").Slug().Link("title"),
		),
		schema.SmallGroup("Media").AddField(
			schema.ImageField("hero", "Hero Image").Ratio(16, 9, true),
		),
		schema.FullGroup("Sections").AddGroup(
			schema.FullGroup("Text").Repeater("text").AddField(
				schema.StringField("body", "Body").Multiline(),
			),
		),
	)

# Endpoints

An endpoint source is either a single Path, expanded to GET, POST, PUT and
DELETE, or an explicit Endpoints mapping. GenerateCrudEndpoints consults a
Checker once per method ({prefix}_read, _create, _update, _delete) and keeps
only the permitted methods.

# Definitions

Routes can also be declared in YAML and built per request:

	routes:
	  - slug: pages
	    name: Pages
	    section: Content
	    permission: pages       # CRUD endpoints generated per actor
	    endpoints: pages
	    icon: description
	    groups:
	      - name: Details
	        size: 8
	        fields:
	          - { key: title, name: Title, required: true, list: 1 }
	          - { key: colour, type: select, options: [Red, Blue] }
	          - { key: hero, type: image, ratio: { width: 16, height: 9, resize: true } }
	          - { key: author, type: related, model: users }

	  - slug: settings
	    append: true            # merged onto an existing route
	    groups:
	      - { name: Social, key: social, fields: [ { key: twitter } ] }

Load definitions with ParseFile or ParseDir. Definitions are validated on
parse; invalid ones return an error wrapping ErrInvalidArgument.
*/
package schema
