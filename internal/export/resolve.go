package export

import (
	"fmt"

	"github.com/storyreel/storyreel-agent/internal/sequence"
)

// GenerateResolveScript renders a Python script for the DaVinci Resolve
// console. The script embeds the canonical manifest and a fixed frame-rate
// constant so the editor's behavior is fully determined by data produced
// here; nothing is recomputed at script-run time. The execution environment
// cannot reliably pass command-line arguments, so the script resolves its
// images directory by adjacent-directory lookup, then a Fusion file dialog,
// then manual path entry.
func GenerateResolveScript(seq *sequence.Sequence, projectName string) (string, error) {
	manifest, err := EncodeManifest(BuildManifest(seq))
	if err != nil {
		return "", err
	}
	return fmt.Sprintf(resolveScriptTemplate, projectName+" Timeline", seq.FPS, manifest), nil
}

// The template deliberately contains no bare percent signs; it is rendered
// with fmt.Sprintf.
const resolveScriptTemplate = `#!/usr/bin/env python
import os

# --- STORYREEL: AUTOMATED TIMELINE IMPORT ---
# 1. Open DaVinci Resolve with a project loaded.
# 2. Workspace -> Console -> select Py3.
# 3. Drag this file into the console window, or paste its contents.
# The 'images' folder from the export package must sit next to this script.

# JSON-as-Python polyfills for the embedded manifest.
false = False
true = True
null = None

TIMELINE_NAME = %q
FPS = %d
SCENES = %s


def get_resolve():
    try:
        return resolve
    except NameError:
        try:
            import DaVinciResolveScript as dvr_script
            return dvr_script.scriptapp("Resolve")
        except ImportError:
            return None


def locate_images_dir(app):
    # Strategy A: folder named 'images' next to this script.
    if '__file__' in globals():
        candidate = os.path.join(os.path.dirname(os.path.abspath(__file__)), "images")
        if os.path.isdir(candidate):
            return candidate

    # Strategy B: Fusion file dialog (works inside the embedded console
    # where stdin is unreliable).
    try:
        fusion = app.Fusion()
        res = fusion.RequestDir("")
        if res and os.path.isdir(res):
            return res
    except Exception as e:
        print("File dialog unavailable: " + str(e))

    # Strategy C: manual path entry.
    print("Could not locate the images folder automatically.")
    try:
        path = input("Full path to images folder> ").strip().strip('"').strip("'")
        if os.path.isdir(path):
            return path
    except Exception as e:
        print("Input error: " + str(e))
    return None


def main():
    app = get_resolve()
    if not app:
        print("Error: could not connect to DaVinci Resolve. Run this inside the Resolve console.")
        return

    project = app.GetProjectManager().GetCurrentProject()
    if not project:
        print("Error: no project open in DaVinci Resolve.")
        return

    media_pool = project.GetMediaPool()

    images_dir = locate_images_dir(app)
    if not images_dir:
        print("Error: images folder not found, aborting.")
        return
    print("Using images at: " + images_dir)

    bin_folder = media_pool.AddSubFolder(media_pool.GetRootFolder(), "Storyboard Import")
    if bin_folder:
        media_pool.SetCurrentFolder(bin_folder)

    files_to_import = []
    for scene in SCENES:
        if scene['isPlaceholder']:
            print("Warning: no image for scene '" + scene['name'] + "', keeping placeholder slot.")
            continue
        full_path = os.path.join(images_dir, scene['filename'])
        if os.path.exists(full_path):
            files_to_import.append(full_path)
        else:
            print("Warning: missing file " + full_path)

    imported = {}
    if files_to_import:
        for item in media_pool.ImportMedia(files_to_import):
            imported[item.GetName()] = item

    timeline = media_pool.CreateEmptyTimeline(TIMELINE_NAME)
    if not timeline:
        print("Error: failed to create timeline.")
        return
    print("Created timeline: " + TIMELINE_NAME)

    for scene in SCENES:
        pool_item = imported.get(scene['filename'])
        if not pool_item:
            continue
        target_frames = scene['durationFrames']

        # Setting Out on the pool item before appending is the reliable way
        # to control still duration across Resolve API versions.
        try:
            pool_item.SetClipProperty("Out", str(target_frames - 1))
        except Exception:
            pass

        new_items = media_pool.AppendToTimeline([pool_item])
        if not new_items:
            print("Warning: could not append '" + scene['name'] + "'")
            continue

        tl_item = new_items[0]
        tl_item.SetName(scene['name'])
        if tl_item.GetDuration() != target_frames:
            try:
                if hasattr(tl_item, 'Resize'):
                    tl_item.Resize(target_frames)
                else:
                    tl_item.SetEnd(tl_item.GetStart() + target_frames)
            except Exception as e:
                print("Warning: could not adjust duration for '" + scene['name'] + "': " + str(e))

        print("Placed: " + scene['name'] + " (" + str(target_frames) + " frames)")

    print("--- Storyboard import complete ---")


if __name__ == "__main__":
    main()
`
