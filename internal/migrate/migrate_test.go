package migrate

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/dejo1307/viewbindmigrate/internal/binding"
	"github.com/dejo1307/viewbindmigrate/internal/classify"
	"github.com/dejo1307/viewbindmigrate/internal/config"
	"github.com/dejo1307/viewbindmigrate/internal/edit"
	"github.com/dejo1307/viewbindmigrate/internal/kotlin"
	"github.com/dejo1307/viewbindmigrate/internal/notify"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}

// project lays out an Android module under a temp dir and returns the repo
// root and the module's main source set.
func project(t *testing.T, layouts map[string]string) (string, string) {
	t.Helper()
	root := t.TempDir()
	main := filepath.Join(root, "app", "src", "main")
	writeFile(t, filepath.Join(root, "app", "build.gradle.kts"), `android {
    namespace = "com.example"
}
`)
	for name, xml := range layouts {
		writeFile(t, filepath.Join(main, "res", "layout", name+".xml"), xml)
	}
	return root, main
}

func converter(root string, n notify.Notifier) *Converter {
	cfg := config.Default()
	cfg.Repo = root
	return New(cfg, nil, n)
}

var allStates = []State{
	StateStart, StateResolved, StateClassified, StatePropertiesInserted,
	StateReferencesRewritten, StateImportsCleaned, StateDone,
}

const activitySrc = `package com.example

import android.os.Bundle
import androidx.appcompat.app.AppCompatActivity
import kotlinx.android.synthetic.main.activity_main.*
import kotlinx.android.synthetic.main.toolbar.*

class MainActivity : AppCompatActivity() {

    override fun onCreate(savedInstanceState: Bundle?) {
        super.onCreate(savedInstanceState)
        setContentView(R.layout.activity_main)
        setSupportActionBar(toolbar)
        fab.setOnClickListener { toolbar_title.text = "clicked" }
    }
}
`

const activityWant = `package com.example

import android.os.Bundle
import androidx.appcompat.app.AppCompatActivity
import android.viewbinding.library.activity.viewBinding
import com.example.databinding.ActivityMainBinding
import com.example.databinding.ToolbarBinding

class MainActivity : AppCompatActivity() {
    private val activityMainBinding: ActivityMainBinding by viewBinding()
    private val toolbarBinding: ToolbarBinding = activityMainBinding.toolbarId

    override fun onCreate(savedInstanceState: Bundle?) {
        super.onCreate(savedInstanceState)
        setContentView(R.layout.activity_main)
        setSupportActionBar(toolbarBinding.toolbar)
        activityMainBinding.fab.setOnClickListener { toolbarBinding.toolbarTitle.text = "clicked" }
    }
}
`

var activityLayouts = map[string]string{
	"activity_main": `<?xml version="1.0" encoding="utf-8"?>
<androidx.coordinatorlayout.widget.CoordinatorLayout xmlns:android="http://schemas.android.com/apk/res/android">
    <include android:id="@+id/toolbar_id" layout="@layout/toolbar" />
    <com.google.android.material.floatingactionbutton.FloatingActionButton android:id="@+id/fab" />
</androidx.coordinatorlayout.widget.CoordinatorLayout>
`,
	"toolbar": `<androidx.appcompat.widget.Toolbar xmlns:android="http://schemas.android.com/apk/res/android"
    android:id="@+id/toolbar">
    <TextView android:id="@+id/toolbar_title" />
</androidx.appcompat.widget.Toolbar>
`,
}

func TestPlanActivityWithInclude(t *testing.T) {
	root, main := project(t, activityLayouts)
	path := filepath.Join(main, "java", "com", "example", "MainActivity.kt")

	p, err := converter(root, notify.Discard{}).Plan(path, []byte(activitySrc))
	if err != nil {
		t.Fatalf("Plan: %v", err)
	}
	if diff := cmp.Diff(activityWant, string(p.Output)); diff != "" {
		t.Errorf("output (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff(allStates, p.States); diff != "" {
		t.Errorf("states (-want +got):\n%s", diff)
	}
	if p.Classification.Kind != classify.Activity || p.Class != "com.example.MainActivity" {
		t.Errorf("classified %s as %+v", p.Class, p.Classification)
	}

	wantDescriptors := []binding.Descriptor{
		{
			Binding:   binding.Binding{Layout: "toolbar", Name: "ToolbarBinding"},
			Kind:      binding.Include,
			IncludeID: "toolbarId",
			Parent:    "ActivityMainBinding",
		},
		{
			Binding: binding.Binding{Layout: "activity_main", Name: "ActivityMainBinding"},
			Kind:    binding.NoInclude,
		},
	}
	if diff := cmp.Diff(wantDescriptors, p.Descriptors); diff != "" {
		t.Errorf("descriptors (-want +got):\n%s", diff)
	}
	wantViews := map[string]string{
		"activity_main": "activityMainBinding",
		"toolbar":       "toolbarBinding",
	}
	if diff := cmp.Diff(wantViews, p.ContentViews); diff != "" {
		t.Errorf("content views (-want +got):\n%s", diff)
	}
	if len(p.RemovedImports) != 2 || !p.Changed {
		t.Errorf("removed %v, changed %v", p.RemovedImports, p.Changed)
	}
}

func TestPlanFragmentSingleBinding(t *testing.T) {
	root, main := project(t, map[string]string{
		"fragment_first": `<LinearLayout xmlns:android="http://schemas.android.com/apk/res/android">
    <TextView android:id="@+id/textview_first" />
    <Button android:id="@+id/button_first" />
</LinearLayout>
`,
	})
	path := filepath.Join(main, "java", "com", "example", "FirstFragment.kt")
	src := `package com.example

import androidx.fragment.app.Fragment
import kotlinx.android.synthetic.main.fragment_first.*

class FirstFragment : Fragment() {
    override fun onViewCreated(view: View, savedInstanceState: Bundle?) {
        button_first.setOnClickListener { textview_first.text = "$textview_first" }
    }
}
`
	want := `package com.example

import androidx.fragment.app.Fragment
import android.viewbinding.library.fragment.viewBinding
import com.example.databinding.FragmentFirstBinding

class FirstFragment : Fragment() {
    private val binding: FragmentFirstBinding by viewBinding()
    override fun onViewCreated(view: View, savedInstanceState: Bundle?) {
        binding.buttonFirst.setOnClickListener { binding.textviewFirst.text = "${binding.textviewFirst}" }
    }
}
`
	c := converter(root, notify.Discard{})
	p, err := c.Plan(path, []byte(src))
	if err != nil {
		t.Fatalf("Plan: %v", err)
	}
	if diff := cmp.Diff(want, string(p.Output)); diff != "" {
		t.Errorf("output (-want +got):\n%s", diff)
	}
	if p.Classification.Kind != classify.Fragment || p.Multiple {
		t.Errorf("classification %+v, multiple %v", p.Classification, p.Multiple)
	}
	if len(p.References) != 3 {
		t.Errorf("references = %d, want 3", len(p.References))
	}

	again, err := c.Plan(path, p.Output)
	if err != nil {
		t.Fatalf("Plan on converted file: %v", err)
	}
	if again.Changed || again.Edits != 0 {
		t.Errorf("converted file changed again: %+v", again)
	}
	if diff := cmp.Diff([]State{StateStart, StateDone}, again.States); diff != "" {
		t.Errorf("states (-want +got):\n%s", diff)
	}
}

func TestPlanCustomView(t *testing.T) {
	root, main := project(t, map[string]string{
		"view_header": `<merge xmlns:android="http://schemas.android.com/apk/res/android">
    <TextView android:id="@+id/header_title" />
</merge>
`,
	})
	path := filepath.Join(main, "java", "com", "example", "widget", "HeaderView.kt")
	src := `package com.example.widget

import android.content.Context
import android.widget.FrameLayout
import kotlinx.android.synthetic.main.view_header.*

class HeaderView(context: Context) : FrameLayout(context) {

    init {
        inflateView(R.layout.view_header)
        header_title.text = "Header"
    }
}
`
	want := `package com.example.widget

import android.content.Context
import android.widget.FrameLayout
import ru.hh.shared.core.ui.design_system.utils.widget.inflateAndBindView
import com.example.databinding.ViewHeaderBinding

class HeaderView(context: Context) : FrameLayout(context) {
    private val binding = inflateAndBindView(ViewHeaderBinding::inflate)

    init {
        binding.headerTitle.text = "Header"
    }
}
`
	p, err := converter(root, notify.Discard{}).Plan(path, []byte(src))
	if err != nil {
		t.Fatalf("Plan: %v", err)
	}
	if diff := cmp.Diff(want, string(p.Output)); diff != "" {
		t.Errorf("output (-want +got):\n%s", diff)
	}
	if p.Classification.Kind != classify.View {
		t.Errorf("classification = %+v", p.Classification)
	}
}

func TestPlanCell(t *testing.T) {
	root, main := project(t, map[string]string{
		"cell_title": `<TextView xmlns:android="http://schemas.android.com/apk/res/android" android:id="@+id/cell_title_text" />`,
	})
	path := filepath.Join(main, "java", "com", "example", "cells", "TitleCell.kt")
	src := `package com.example.cells

import ru.hh.shared.core.ui.cells_framework.cells.interfaces.Cell
import kotlinx.android.synthetic.main.cell_title.*

class TitleCell(private val title: String) : Cell {
    override fun bind(viewHolder: ViewHolder) {
        with(viewHolder.itemView) {
            cell_title_text.text = title
        }
    }
}
`
	want := `package com.example.cells

import ru.hh.shared.core.ui.cells_framework.cells.interfaces.Cell
import ru.hh.shared.core.ui.cells_framework.cells.getViewBinding
import com.example.databinding.CellTitleBinding

class TitleCell(private val title: String) : Cell {
    override fun bind(viewHolder: ViewHolder) {
        with(viewHolder.getViewBinding(CellTitleBinding::bind)) {
            cellTitleText.text = title
        }
    }
}
`
	p, err := converter(root, notify.Discard{}).Plan(path, []byte(src))
	if err != nil {
		t.Fatalf("Plan: %v", err)
	}
	if diff := cmp.Diff(want, string(p.Output)); diff != "" {
		t.Errorf("output (-want +got):\n%s", diff)
	}
	wantClass := classify.Result{Kind: classify.Custom, Handler: CellHandler}
	if p.Classification != wantClass {
		t.Errorf("classification = %+v", p.Classification)
	}
	if len(p.Properties) != 0 {
		t.Errorf("cells get no properties, got %v", p.Properties)
	}
}

func TestPlanCellWithoutWithCallWarns(t *testing.T) {
	root, main := project(t, map[string]string{
		"cell_title": `<TextView xmlns:android="http://schemas.android.com/apk/res/android" android:id="@+id/cell_title_text" />`,
	})
	rec := &notify.Recorder{}
	c := converter(root, rec)
	src := `package com.example.cells

import ru.hh.shared.core.ui.cells_framework.cells.interfaces.Cell
import kotlinx.android.synthetic.main.cell_title.*

class TitleCell : Cell {
    override fun bind(viewHolder: ViewHolder) = Unit
}
`
	p, err := c.Plan(filepath.Join(main, "java", "TitleCell.kt"), []byte(src))
	if err != nil {
		t.Fatalf("Plan: %v", err)
	}
	if rec.Count(notify.Warn) != 1 {
		t.Errorf("warnings = %v", rec.Messages())
	}
	if !strings.Contains(string(p.Output), "import com.example.databinding.CellTitleBinding\n") {
		t.Errorf("binding import missing:\n%s", p.Output)
	}
}

func TestPlanBodilessView(t *testing.T) {
	root, main := project(t, map[string]string{
		"view_empty": `<merge xmlns:android="http://schemas.android.com/apk/res/android" />`,
	})
	src := `package com.example

import android.view.View
import kotlinx.android.synthetic.main.view_empty.*

class EmptyView(context: Context) : View(context)
`
	want := `package com.example

import android.view.View
import ru.hh.shared.core.ui.design_system.utils.widget.inflateAndBindView
import com.example.databinding.ViewEmptyBinding

class EmptyView(context: Context) : View(context) {
    private val binding = inflateAndBindView(ViewEmptyBinding::inflate)
}
`
	p, err := converter(root, notify.Discard{}).Plan(filepath.Join(main, "java", "EmptyView.kt"), []byte(src))
	if err != nil {
		t.Fatalf("Plan: %v", err)
	}
	if diff := cmp.Diff(want, string(p.Output)); diff != "" {
		t.Errorf("output (-want +got):\n%s", diff)
	}
}

func TestPlanUnhandledClassOnlyDropsImports(t *testing.T) {
	src := `package com.example

import kotlinx.android.synthetic.main.item.*

class Helper {
    fun f() = item_text
}
`
	want := `package com.example


class Helper {
    fun f() = item_text
}
`
	p, err := New(config.Default(), nil, notify.Discard{}).Plan("Helper.kt", []byte(src))
	if err != nil {
		t.Fatalf("Plan: %v", err)
	}
	if diff := cmp.Diff(want, string(p.Output)); diff != "" {
		t.Errorf("output (-want +got):\n%s", diff)
	}
	wantStates := []State{StateStart, StateResolved, StateClassified, StateDone}
	if diff := cmp.Diff(wantStates, p.States); diff != "" {
		t.Errorf("states (-want +got):\n%s", diff)
	}
	if p.Classification.Kind != classify.Unhandled {
		t.Errorf("classification = %+v", p.Classification)
	}
}

func TestPlanWithoutSyntheticImports(t *testing.T) {
	src := "package com.example\n\nclass Plain\n"
	p, err := New(config.Default(), nil, notify.Discard{}).Plan("Plain.kt", []byte(src))
	if err != nil {
		t.Fatalf("Plan: %v", err)
	}
	if p.Changed || p.Edits != 0 || p.State() != StateDone {
		t.Errorf("plan = %+v", p)
	}
}

func TestPlanWithoutClassDropsImports(t *testing.T) {
	src := `package com.example

import kotlinx.android.synthetic.main.item.*

fun render() = item_text
`
	want := `package com.example


fun render() = item_text
`
	p, err := New(config.Default(), nil, notify.Discard{}).Plan("render.kt", []byte(src))
	if err != nil {
		t.Fatalf("Plan: %v", err)
	}
	if diff := cmp.Diff(want, string(p.Output)); diff != "" {
		t.Errorf("output (-want +got):\n%s", diff)
	}
	if p.Classification.Kind != classify.Unhandled || p.Class != "" || !p.Changed {
		t.Errorf("plan = %+v", p)
	}
}

func TestPlanOneLineBody(t *testing.T) {
	root, main := project(t, map[string]string{
		"activity_one": `<TextView xmlns:android="http://schemas.android.com/apk/res/android" android:id="@+id/title_text" />`,
	})
	tests := []struct {
		name string
		body string
		want string
	}{
		{
			"members on the brace line",
			"class OneActivity : AppCompatActivity() { fun f() { title_text.text = \"x\" } }\n",
			"class OneActivity : AppCompatActivity() {\n" +
				"    private val binding: ActivityOneBinding by viewBinding()\n" +
				"    fun f() { binding.titleText.text = \"x\" }\n" +
				"}\n",
		},
		{
			"empty body",
			"class OneActivity : AppCompatActivity() { }\n",
			"class OneActivity : AppCompatActivity() {\n" +
				"    private val binding: ActivityOneBinding by viewBinding()\n" +
				"}\n",
		},
		{
			"members continue on later lines",
			"class OneActivity : AppCompatActivity() { fun f() = 1\n    fun g() = title_text\n}\n",
			"class OneActivity : AppCompatActivity() {\n" +
				"    private val binding: ActivityOneBinding by viewBinding()\n" +
				"    fun f() = 1\n" +
				"    fun g() = binding.titleText\n" +
				"}\n",
		},
	}
	header := "package com.example\n\nimport androidx.appcompat.app.AppCompatActivity\nimport kotlinx.android.synthetic.main.activity_one.*\n\n"
	wantHeader := "package com.example\n\nimport androidx.appcompat.app.AppCompatActivity\n" +
		"import android.viewbinding.library.activity.viewBinding\n" +
		"import com.example.databinding.ActivityOneBinding\n\n"
	path := filepath.Join(main, "java", "com", "example", "OneActivity.kt")
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := converter(root, notify.Discard{}).Plan(path, []byte(header+tt.body))
			if err != nil {
				t.Fatalf("Plan: %v", err)
			}
			if diff := cmp.Diff(wantHeader+tt.want, string(p.Output)); diff != "" {
				t.Errorf("output (-want +got):\n%s", diff)
			}
		})
	}
}

func TestConvertWithoutLayoutIDs(t *testing.T) {
	const activity = `package com.example

import androidx.appcompat.app.AppCompatActivity
import kotlinx.android.synthetic.main.activity_main.*

class MainActivity : AppCompatActivity() {
    fun f() { button_first.text = "x" }
}
`
	tests := []struct {
		name    string
		layouts map[string]string
		warning string
	}{
		{"no layout directory", nil, "no layout directory for MainActivity.kt; ids of activity_main are unknown"},
		{"layout file missing", map[string]string{"other": "<FrameLayout />"}, "layout activity_main: reading layout activity_main"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			root, main := project(t, tt.layouts)
			path := filepath.Join(main, "java", "com", "example", "MainActivity.kt")
			writeFile(t, path, activity)
			rec := &notify.Recorder{}

			p, err := converter(root, rec).Convert(path, FileTransaction{})
			if !errors.Is(err, ErrUnknownIDs) {
				t.Fatalf("err = %v, want ErrUnknownIDs", err)
			}
			if p.Changed {
				t.Error("plan marked changed")
			}
			msgs := rec.Messages()
			if len(msgs) != 1 || msgs[0].Level != notify.Warn || !strings.HasPrefix(msgs[0].Text, tt.warning) {
				t.Errorf("messages = %v, want one warning starting with %q", msgs, tt.warning)
			}
			data, _ := os.ReadFile(path)
			if string(data) != activity {
				t.Errorf("file was modified:\n%s", data)
			}
		})
	}
}

func TestPlanPerViewImportsWithoutLayouts(t *testing.T) {
	cfg := config.Default()
	cfg.Namespace = "com.example"
	src := `package com.example

import androidx.fragment.app.Fragment
import kotlinx.android.synthetic.main.fragment_first.button_first

class FirstFragment : Fragment() {
    fun f() { button_first.text = "x" }
}
`
	rec := &notify.Recorder{}
	p, err := New(cfg, nil, rec).Plan("FirstFragment.kt", []byte(src))
	if err != nil {
		t.Fatalf("Plan: %v", err)
	}
	if !strings.Contains(string(p.Output), "binding.buttonFirst.text") || rec.Count(notify.Warn) != 0 {
		t.Errorf("output:\n%s\nmessages: %v", p.Output, rec.Messages())
	}
}

func TestDeleteImportsReportsUnremovable(t *testing.T) {
	src := []byte("import kotlinx.android.synthetic.main.a.*\n")
	imp := kotlin.Import{Path: "kotlinx.android.synthetic.main.a.*", Start: 0, End: len(src)}
	rec := &notify.Recorder{}
	buf := edit.NewBuffer(src)

	removed := deleteImports(buf, []kotlin.Import{imp, imp}, rec)
	if len(removed) != 1 || buf.Len() != 1 {
		t.Errorf("removed %v with %d edits", removed, buf.Len())
	}
	if rec.Count(notify.Warn) != 1 {
		t.Errorf("messages = %v", rec.Messages())
	}
}

func TestConvertCommitsThroughTransaction(t *testing.T) {
	root, main := project(t, activityLayouts)
	path := filepath.Join(main, "java", "com", "example", "MainActivity.kt")
	writeFile(t, path, activitySrc)
	rec := &notify.Recorder{}
	c := converter(root, rec)

	dry := &DryRunTransaction{}
	if _, err := c.Convert(path, dry); err != nil {
		t.Fatalf("dry Convert: %v", err)
	}
	if data, _ := os.ReadFile(path); string(data) != activitySrc {
		t.Error("dry run modified the file")
	}
	diffs := dry.Diffs()
	if len(diffs) != 1 {
		t.Fatalf("diffs = %d, want 1", len(diffs))
	}
	for _, line := range []string{
		"-import kotlinx.android.synthetic.main.toolbar.*",
		"+    private val activityMainBinding: ActivityMainBinding by viewBinding()",
		"+        setSupportActionBar(toolbarBinding.toolbar)",
	} {
		if !strings.Contains(diffs[0].Unified, line+"\n") {
			t.Errorf("diff lacks %q:\n%s", line, diffs[0].Unified)
		}
	}

	if _, err := c.Convert(path, FileTransaction{}); err != nil {
		t.Fatalf("Convert: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff(activityWant, string(data)); diff != "" {
		t.Errorf("converted file (-want +got):\n%s", diff)
	}
	want := notify.Message{Level: notify.Info, Text: "File MainActivity.kt converted successfully!"}
	msgs := rec.Messages()
	if len(msgs) == 0 || msgs[len(msgs)-1] != want {
		t.Errorf("messages = %v", msgs)
	}
}

func TestConvertUnhandledIsSilent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "Helper.kt")
	writeFile(t, path, "import kotlinx.android.synthetic.main.item.*\n\nclass Helper\n")
	rec := &notify.Recorder{}
	p, err := New(config.Default(), nil, rec).Convert(path, FileTransaction{})
	if err != nil {
		t.Fatalf("Convert: %v", err)
	}
	if !p.Changed || rec.Count(notify.Info) != 0 {
		t.Errorf("changed %v, messages %v", p.Changed, rec.Messages())
	}
	data, _ := os.ReadFile(path)
	if string(data) != "\nclass Helper\n" {
		t.Errorf("file = %q", data)
	}
}

func TestFileTransactionConflict(t *testing.T) {
	path := filepath.Join(t.TempDir(), "A.kt")
	writeFile(t, path, "class A\n")
	if err := os.Chmod(path, 0o600); err != nil {
		t.Fatal(err)
	}

	err := FileTransaction{}.Commit(path, []byte("class B\n"), []byte("class C\n"))
	if !errors.Is(err, ErrConflict) {
		t.Fatalf("err = %v, want ErrConflict", err)
	}
	if err := (FileTransaction{}).Commit(path, []byte("class A\n"), []byte("class C\n")); err != nil {
		t.Fatalf("Commit: %v", err)
	}
	info, err := os.Stat(path)
	if err != nil {
		t.Fatal(err)
	}
	if info.Mode().Perm() != 0o600 {
		t.Errorf("mode = %v, want 0600", info.Mode().Perm())
	}
	entries, _ := os.ReadDir(filepath.Dir(path))
	if len(entries) != 1 {
		t.Errorf("temp files left behind: %d entries", len(entries))
	}
}

func TestTemplates(t *testing.T) {
	single := binding.Resolve([]string{"kotlinx.android.synthetic.main.fragment_first.*"})
	multi := binding.Resolve([]string{
		"kotlinx.android.synthetic.main.activity_main.*",
		"kotlinx.android.synthetic.main.content_main.fab",
	})

	tests := []struct {
		name string
		got  string
		want string
	}{
		{"content view single", ContentViewBindingName(single, "fragment_first"), "binding"},
		{"content view multi", ContentViewBindingName(multi, "content_main"), "contentMainBinding"},
		{"content view unknown", ContentViewBindingName(multi, "other"), "binding"},
		{
			"delegate single",
			DelegateProperty(binding.Descriptor{Binding: single.Bindings[0]}, false),
			"private val binding: FragmentFirstBinding by viewBinding()",
		},
		{
			"delegate include",
			DelegateProperty(binding.Descriptor{
				Binding:   binding.Binding{Layout: "toolbar", Name: "ToolbarBinding"},
				Kind:      binding.Include,
				IncludeID: "toolbarId",
				Parent:    "ActivityMainBinding",
			}, true),
			"private val toolbarBinding: ToolbarBinding = activityMainBinding.toolbarId",
		},
		{"inflate multi", InflateProperty("ViewHeaderBinding", true), "private val viewHeaderBinding = inflateAndBindView(ViewHeaderBinding::inflate)"},
		{"cell argument", CellBindArgument("CellTitleBinding"), "viewHolder.getViewBinding(CellTitleBinding::bind)"},
		{"binding import", BindingImport("com.example", "ToolbarBinding"), "com.example.databinding.ToolbarBinding"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.got != tt.want {
				t.Errorf("got %q, want %q", tt.got, tt.want)
			}
		})
	}
}
