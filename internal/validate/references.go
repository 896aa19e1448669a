package validate

import (
	"csls/internal/cimap"
	"csls/internal/diag"
	"csls/internal/language"
	"csls/internal/source"
)

// references checks every variable read in the document. A variable
// created in this scene, directly or in a subroutine, shadows a global of
// the same name. Reading such a local before its creation is an error only
// when no global can stand in for it.
func (c *checker) references() {
	uri := c.doc.URI
	locals := c.idx.LocalVariables(uri)
	subroutine := c.idx.SubroutineLocalVariables(uri)
	globals := c.idx.GlobalVariables()
	scopes := c.idx.DocumentScopes(uri)
	startup := c.idx.IsStartupFileURI(uri)
	projectReady := c.idx.ProjectIsIndexed()

	c.idx.VariableReferences(uri).Range(func(name string, refs []source.Location) bool {
		if language.IsBuiltinVariable(name) {
			return true
		}
		// The earlier of a direct creation and the first *gosub into a
		// subroutine creating the name.
		created, hasLocal := locals.First(name)
		if call, ok := subroutine.Get(name); ok && (!hasLocal || call.Range.Start.Before(created.Range.Start)) {
			created, hasLocal = call, true
		}
		global, hasGlobal := globals.Get(name)
		codename, isAchievementVar := language.AchievementCodename(name)

		for _, ref := range refs {
			pos := ref.Range.Start
			if language.IsParamVariable(name) && scopes.InParamScope(pos) {
				continue
			}
			if isAchievementVar && scopes.InAchievementScope(pos) {
				continue
			}
			switch {
			case hasLocal:
				if !pos.Before(created.Range.Start) || hasGlobal {
					continue
				}
				c.out.Report(diag.RefUsedBeforeCreation, diag.SevError, c.span(ref),
					"Variable "+name+" is used before it is created")
			case hasGlobal:
				if startup && global.URI == uri && pos.Before(global.Range.Start) {
					c.out.Report(diag.RefUsedBeforeCreation, diag.SevError, c.span(ref),
						"Variable "+name+" is used before it is created")
				}
			case !projectReady:
			case isAchievementVar && c.idx.Achievements().Has(codename):
				c.out.Report(diag.RefUndefinedVariable, diag.SevWarning, c.span(ref),
					name+" is only set after *check_achievements")
			default:
				c.out.Report(diag.RefUndefinedVariable, diag.SevError, c.span(ref),
					"Variable "+name+" is not defined")
			}
		}
		return true
	})
}

// achievements checks that every *achieve names a declared achievement.
// Achievements live in startup, so the check waits until it is indexed.
func (c *checker) achievements() {
	if c.idx.StartupURI() == "" {
		return
	}
	known := c.idx.Achievements()
	c.idx.AchievementReferences(c.doc.URI).Range(func(name string, refs []source.Location) bool {
		if known.Has(name) {
			return true
		}
		for _, ref := range refs {
			c.out.Report(diag.RefUnknownAchievement, diag.SevError, c.span(ref),
				"Achievement "+name+" is not defined in "+source.FileName(c.idx.StartupURI()))
		}
		return true
	})
}

// flowControl checks the recorded jumps. Labels of this document are always
// known; other scenes are only checked once the whole project is indexed.
func (c *checker) flowControl() {
	uri := c.doc.URI
	labels := c.idx.Labels(uri)
	projectReady := c.idx.ProjectIsIndexed()
	var indexed cimap.Map[struct{}]
	for _, s := range c.idx.IndexedScenes() {
		indexed.Set(s, struct{}{})
	}
	var listed cimap.Map[struct{}]
	for _, s := range c.idx.SceneList() {
		listed.Set(s, struct{}{})
	}

	for _, ev := range c.idx.FlowControlEvents(uri) {
		if ev.Command == language.FlowReturn {
			continue
		}
		if ev.Scene == "" {
			if ev.LabelLocation == nil || ev.LabelIsInterpolated() {
				continue
			}
			if _, ok := labels.Get(ev.Label); !ok {
				c.out.Report(diag.RefUndefinedLabel, diag.SevError, c.span(*ev.LabelLocation),
					"Label "+ev.Label+" is not defined in this scene")
			}
			continue
		}
		if !projectReady || ev.SceneIsInterpolated() || ev.SceneLocation == nil {
			continue
		}
		if !indexed.Has(ev.Scene) {
			if !listed.Has(ev.Scene) {
				c.out.Report(diag.RefUnknownScene, diag.SevWarning, c.span(*ev.SceneLocation),
					"Scene "+ev.Scene+" does not exist")
			}
			continue
		}
		if ev.LabelLocation == nil || ev.LabelIsInterpolated() {
			continue
		}
		target := c.idx.SceneURI(ev.Scene)
		if _, ok := c.idx.Labels(target).Get(ev.Label); !ok {
			c.out.Report(diag.RefLabelNotInScene, diag.SevError, c.span(*ev.LabelLocation),
				"Label not found in scene "+ev.Scene+": "+ev.Label)
		}
	}
}
